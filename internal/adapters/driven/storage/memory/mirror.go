package memory

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"testing/fstest"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
)

// Ensure the mirror doubles implement the interfaces.
var (
	_ driven.MirrorState = (*MirrorState)(nil)
	_ driven.MirrorTool  = (*MirrorTool)(nil)
)

// MirrorState is an in-memory mirror tree backed by fstest.MapFS.
// Paths are slash-separated and relative to the mirror root.
type MirrorState struct {
	mu     sync.RWMutex
	layout domain.MirrorLayout
	files  fstest.MapFS
	resets int
}

// NewMirrorState creates an empty mirror with the given layout.
func NewMirrorState(layout domain.MirrorLayout) *MirrorState {
	return &MirrorState{
		layout: layout,
		files:  make(fstest.MapFS),
	}
}

// Layout returns the mirror layout.
func (s *MirrorState) Layout() domain.MirrorLayout {
	return s.layout
}

// Health reports healthy once any file exists below the data path.
func (s *MirrorState) Health() (domain.MirrorHealth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := path.Clean(s.layout.DataPath) + "/"
	for name := range s.files {
		if strings.HasPrefix(name, prefix) {
			return domain.MirrorHealthy, nil
		}
	}
	return domain.MirrorMissing, nil
}

// Reset removes every file.
func (s *MirrorState) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(fstest.MapFS)
	s.resets++
	return nil
}

// Resets returns how often Reset was called.
func (s *MirrorState) Resets() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resets
}

// FS returns a snapshot of the tree.
func (s *MirrorState) FS() fs.FS {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(fstest.MapFS, len(s.files))
	for name, f := range s.files {
		snapshot[name] = f
	}
	return snapshot
}

// WriteFile adds or replaces a file.
func (s *MirrorState) WriteFile(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = &fstest.MapFile{Data: data, Mode: 0644}
}

// WriteFiles adds every file in files.
func (s *MirrorState) WriteFiles(files map[string][]byte) {
	for name, data := range files {
		s.WriteFile(name, data)
	}
}

// MirrorTool records the calls made to it and simulates a checkout by
// copying Files into State.
type MirrorTool struct {
	mu sync.Mutex

	// VersionOutput is returned by Version.
	VersionOutput string

	// HeadCommit is returned by Head.
	HeadCommit string

	// Files is written to State on Checkout and Pull.
	Files map[string][]byte
	State *MirrorState

	// Errs fails the named call ("version", "clone", "sparse-checkout init",
	// "sparse-checkout set", "checkout", "pull", "head").
	Errs map[string]error

	calls []string
}

// NewMirrorTool creates a tool that reports version and populates state.
func NewMirrorTool(version string, state *MirrorState, files map[string][]byte) *MirrorTool {
	return &MirrorTool{
		VersionOutput: version,
		HeadCommit:    "0000000000000000000000000000000000000000",
		Files:         files,
		State:         state,
		Errs:          make(map[string]error),
	}
}

// Calls returns the recorded calls in order, formatted as "name arg...".
func (t *MirrorTool) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.calls))
	copy(out, t.calls)
	return out
}

// Count returns how often the named call was made.
func (t *MirrorTool) Count(name string) int {
	n := 0
	for _, c := range t.Calls() {
		if c == name || strings.HasPrefix(c, name+" ") {
			n++
		}
	}
	return n
}

func (t *MirrorTool) record(name string, args ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	call := strings.Join(append([]string{name}, args...), " ")
	t.calls = append(t.calls, call)
	return t.Errs[name]
}

// Version returns VersionOutput.
func (t *MirrorTool) Version(_ context.Context) (string, error) {
	if err := t.record("version"); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrToolMissing, err)
	}
	return t.VersionOutput, nil
}

// Clone records the call.
func (t *MirrorTool) Clone(_ context.Context, remoteURL, dir string) error {
	return t.record("clone", remoteURL, dir)
}

// SparseCheckoutInit records the call.
func (t *MirrorTool) SparseCheckoutInit(_ context.Context, repoDir string) error {
	return t.record("sparse-checkout init", repoDir)
}

// SparseCheckoutSet records the call.
func (t *MirrorTool) SparseCheckoutSet(_ context.Context, repoDir string, paths ...string) error {
	return t.record("sparse-checkout set", append([]string{repoDir}, paths...)...)
}

// Checkout records the call and populates State.
func (t *MirrorTool) Checkout(_ context.Context, repoDir string) error {
	if err := t.record("checkout", repoDir); err != nil {
		return err
	}
	t.populate()
	return nil
}

// Pull records the call and refreshes State.
func (t *MirrorTool) Pull(_ context.Context, repoDir string) error {
	if err := t.record("pull", repoDir); err != nil {
		return err
	}
	t.populate()
	return nil
}

// Head returns HeadCommit.
func (t *MirrorTool) Head(_ context.Context, repoDir string) (string, error) {
	if err := t.record("head", repoDir); err != nil {
		return "", err
	}
	return t.HeadCommit, nil
}

func (t *MirrorTool) populate() {
	if t.State != nil {
		t.State.WriteFiles(t.Files)
	}
}
