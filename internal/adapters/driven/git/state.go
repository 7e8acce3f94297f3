package git

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
)

// Ensure State implements the interface.
var _ driven.MirrorState = (*State)(nil)

// State is a mirror working tree on the local filesystem.
type State struct {
	layout domain.MirrorLayout
}

// NewState creates a state for layout.
func NewState(layout domain.MirrorLayout) *State {
	return &State{layout: layout}
}

// Layout returns the mirror layout.
func (s *State) Layout() domain.MirrorLayout {
	return s.layout
}

// Health reports healthy when the data directory has at least one entry.
// A data path that is not a directory counts as missing.
func (s *State) Health() (domain.MirrorHealth, error) {
	info, err := os.Stat(s.layout.DataDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.MirrorMissing, nil
		}
		return domain.MirrorMissing, err
	}
	if !info.IsDir() {
		return domain.MirrorMissing, nil
	}

	dir, err := os.Open(s.layout.DataDir())
	if err != nil {
		return domain.MirrorMissing, err
	}
	defer dir.Close()

	if _, err := dir.Readdirnames(1); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.MirrorMissing, nil
		}
		return domain.MirrorMissing, err
	}
	return domain.MirrorHealthy, nil
}

// Reset removes the mirror root and everything below it.
func (s *State) Reset() error {
	return os.RemoveAll(s.layout.Root)
}

// FS returns the mirror root as a filesystem.
func (s *State) FS() fs.FS {
	return os.DirFS(s.layout.Root)
}
