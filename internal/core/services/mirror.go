package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driving"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// Ensure MirrorSynchronizer implements the interface.
var _ driving.MirrorService = (*MirrorSynchronizer)(nil)

// Names of the synchronisation steps reported in domain.MirrorSyncError.
const (
	StepHealth             = "health"
	StepReset              = "reset"
	StepClone              = "clone"
	StepSparseCheckoutInit = "sparse-checkout init"
	StepSparseCheckoutSet  = "sparse-checkout set"
	StepCheckout           = "checkout"
	StepPull               = "pull"
	StepVerify             = "verify"
)

// MirrorSynchronizer keeps the local sparse, shallow mirror current.
type MirrorSynchronizer struct {
	tool       driven.MirrorTool
	state      driven.MirrorState
	checker    *PreconditionChecker
	upstream   driven.UpstreamInspector
	remoteURL  string
	minVersion string
}

// NewMirrorSynchronizer creates a synchronizer for the mirror in state.
// upstream is optional; without it Status does not report the upstream head.
func NewMirrorSynchronizer(
	tool driven.MirrorTool,
	state driven.MirrorState,
	upstream driven.UpstreamInspector,
	remoteURL string,
	minVersion string,
) *MirrorSynchronizer {
	return &MirrorSynchronizer{
		tool:       tool,
		state:      state,
		checker:    NewPreconditionChecker(tool),
		upstream:   upstream,
		remoteURL:  remoteURL,
		minVersion: minVersion,
	}
}

// Check verifies the mirroring tool is installed and recent enough.
func (m *MirrorSynchronizer) Check(ctx context.Context) (string, error) {
	return m.checker.Check(ctx, m.minVersion)
}

// Sync checks the tool, then clones a missing mirror or pulls a healthy one.
//
// A data directory that is absent or empty counts as missing: whatever is
// under the root is removed and the mirror is cloned again from scratch.
func (m *MirrorSynchronizer) Sync(ctx context.Context) (domain.SyncOutcome, error) {
	version, err := m.Check(ctx)
	if err != nil {
		return domain.SyncOutcome{}, err
	}
	outcome := domain.SyncOutcome{ToolVersion: version}

	health, err := m.state.Health()
	if err != nil {
		return outcome, &domain.MirrorSyncError{Step: StepHealth, Err: err}
	}

	layout := m.state.Layout()
	if health == domain.MirrorHealthy {
		logger.Info("Pulling mirror at %s", layout.Root)
		if err := m.tool.Pull(ctx, layout.Root); err != nil {
			return outcome, &domain.MirrorSyncError{Step: StepPull, Err: err}
		}
		outcome.Action = domain.SyncPulled
		return outcome, nil
	}

	logger.Info("Mirror at %s is %s, cloning %s", layout.Root, health, m.remoteURL)
	if err := m.clone(ctx, layout); err != nil {
		return outcome, err
	}
	outcome.Action = domain.SyncCloned
	return outcome, nil
}

// clone replaces the mirror root with a fresh sparse checkout of the data path.
func (m *MirrorSynchronizer) clone(ctx context.Context, layout domain.MirrorLayout) error {
	if err := m.state.Reset(); err != nil {
		return &domain.MirrorSyncError{Step: StepReset, Err: err}
	}
	if err := m.tool.Clone(ctx, m.remoteURL, layout.Root); err != nil {
		return &domain.MirrorSyncError{Step: StepClone, Err: err}
	}
	if err := m.tool.SparseCheckoutInit(ctx, layout.Root); err != nil {
		return &domain.MirrorSyncError{Step: StepSparseCheckoutInit, Err: err}
	}
	if err := m.tool.SparseCheckoutSet(ctx, layout.Root, layout.DataPath); err != nil {
		return &domain.MirrorSyncError{Step: StepSparseCheckoutSet, Err: err}
	}
	if err := m.tool.Checkout(ctx, layout.Root); err != nil {
		return &domain.MirrorSyncError{Step: StepCheckout, Err: err}
	}

	health, err := m.state.Health()
	if err != nil {
		return &domain.MirrorSyncError{Step: StepVerify, Err: err}
	}
	if health != domain.MirrorHealthy {
		return &domain.MirrorSyncError{
			Step: StepVerify,
			Err:  fmt.Errorf("%s is empty after checkout", layout.DataPath),
		}
	}
	return nil
}

// Status reports the local mirror against its upstream.
// Upstream failures are reported in the status, not returned.
func (m *MirrorSynchronizer) Status(ctx context.Context) (*driving.MirrorStatus, error) {
	health, err := m.state.Health()
	if err != nil {
		return nil, fmt.Errorf("check mirror health: %w", err)
	}

	status := &driving.MirrorStatus{
		Layout: m.state.Layout(),
		Health: health,
	}

	if health == domain.MirrorHealthy {
		head, err := m.tool.Head(ctx, status.Layout.Root)
		if err != nil {
			return nil, fmt.Errorf("read local head: %w", err)
		}
		status.LocalHead = head
	}

	if m.upstream != nil {
		head, err := m.upstream.HeadCommit(ctx, m.remoteURL)
		if err != nil {
			logger.Warn("Could not query upstream %s: %v", m.remoteURL, err)
			status.UpstreamErr = err
		} else {
			status.UpstreamHead = head
		}
	}

	return status, nil
}

// EnsureHealthy fails with domain.ErrMirrorMissing unless the mirror is populated.
func (m *MirrorSynchronizer) EnsureHealthy() error {
	health, err := m.state.Health()
	if err != nil {
		return fmt.Errorf("check mirror health: %w", err)
	}
	if health != domain.MirrorHealthy {
		return fmt.Errorf("%w: %s", domain.ErrMirrorMissing, m.state.Layout().DataDir())
	}
	return nil
}
