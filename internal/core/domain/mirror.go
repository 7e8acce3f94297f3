package domain

import (
	"path"
	"path/filepath"
)

// ReferenceFileName is the reference document published next to the data directories.
const ReferenceFileName = "referencedata.json"

// MirrorLayout locates the pieces of a local mirror.
type MirrorLayout struct {
	// Root is the repository working tree.
	Root string

	// DataPath is the sparse-checkout path, slash-separated and relative to Root
	// (e.g. "data/DE").
	DataPath string
}

// DataDir returns the absolute data directory.
func (l MirrorLayout) DataDir() string {
	return filepath.Join(l.Root, filepath.FromSlash(l.DataPath))
}

// ReferenceFile returns the path of the reference document, which sits in the
// parent of the data directory.
func (l MirrorLayout) ReferenceFile() string {
	return filepath.Join(filepath.Dir(l.DataDir()), ReferenceFileName)
}

// ReferencePath returns the reference document path relative to Root,
// slash-separated for use with fs.FS.
func (l MirrorLayout) ReferencePath() string {
	return path.Join(path.Dir(path.Clean(l.DataPath)), ReferenceFileName)
}

// MirrorHealth is the coarse state of a local mirror.
type MirrorHealth int

const (
	// MirrorMissing means the data directory is absent or empty.
	MirrorMissing MirrorHealth = iota

	// MirrorHealthy means the data directory has at least one entry.
	MirrorHealthy
)

// String returns a display name.
func (h MirrorHealth) String() string {
	switch h {
	case MirrorMissing:
		return "missing"
	case MirrorHealthy:
		return "healthy"
	default:
		return "unknown"
	}
}

// SyncAction is what a mirror synchronisation did.
type SyncAction string

// Synchronisation actions.
const (
	SyncCloned  SyncAction = "cloned"
	SyncPulled  SyncAction = "pulled"
	SyncSkipped SyncAction = "skipped"
)

// SyncOutcome reports a completed synchronisation.
type SyncOutcome struct {
	Action      SyncAction
	ToolVersion string
}
