package driving

import (
	"context"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

// MirrorService maintains the local mirror of the upstream export.
type MirrorService interface {
	// Check verifies the mirroring tool is installed and recent enough.
	// Returns the parsed tool version.
	Check(ctx context.Context) (string, error)

	// Sync checks the tool, then clones or pulls the mirror.
	Sync(ctx context.Context) (domain.SyncOutcome, error)

	// Status reports the local mirror against its upstream.
	Status(ctx context.Context) (*MirrorStatus, error)
}

// MirrorStatus describes the local mirror.
type MirrorStatus struct {
	Layout domain.MirrorLayout
	Health domain.MirrorHealth

	// LocalHead is empty when the mirror is missing.
	LocalHead string

	// UpstreamHead is empty when the upstream could not be queried.
	UpstreamHead string

	// UpstreamErr is set when the upstream query failed. It does not fail Status.
	UpstreamErr error
}

// UpToDate reports whether a pull would leave the mirror unchanged.
func (s *MirrorStatus) UpToDate() bool {
	return s.Health == domain.MirrorHealthy && s.LocalHead != "" && s.LocalHead == s.UpstreamHead
}
