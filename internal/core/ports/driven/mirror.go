package driven

import (
	"context"
	"io/fs"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

// MirrorTool drives the external version-control tool that maintains the mirror.
// Every method runs one subprocess and blocks until it exits.
type MirrorTool interface {
	// Version returns the raw output of the tool's version query.
	// Returns an error wrapping domain.ErrToolMissing when the tool cannot be run.
	Version(ctx context.Context) (string, error)

	// Clone performs a depth-1 clone of remoteURL into dir without checking out files.
	Clone(ctx context.Context, remoteURL, dir string) error

	// SparseCheckoutInit enables cone-mode sparse checkout in repoDir.
	SparseCheckoutInit(ctx context.Context, repoDir string) error

	// SparseCheckoutSet restricts the sparse checkout of repoDir to paths.
	SparseCheckoutSet(ctx context.Context, repoDir string, paths ...string) error

	// Checkout materialises the working tree of repoDir.
	Checkout(ctx context.Context, repoDir string) error

	// Pull refreshes repoDir from its remote.
	Pull(ctx context.Context, repoDir string) error

	// Head returns the commit checked out in repoDir.
	Head(ctx context.Context, repoDir string) (string, error)
}

// MirrorState is the local directory tree a mirror lives in.
// It is process-external state shared between runs; callers serialise runs per root.
type MirrorState interface {
	// Layout returns where the mirror keeps its data.
	Layout() domain.MirrorLayout

	// Health reports whether the data directory exists and has at least one entry.
	Health() (domain.MirrorHealth, error)

	// Reset removes the whole mirror root, partial or not.
	// Removing an absent root is not an error.
	Reset() error

	// FS returns a read-only view rooted at the mirror root.
	FS() fs.FS
}
