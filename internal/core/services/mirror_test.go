package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

type fakeUpstream struct {
	head string
	err  error
}

func (f fakeUpstream) HeadCommit(_ context.Context, _ string) (string, error) {
	return f.head, f.err
}

func TestMirrorSynchronizer_Sync_ClonesMissingMirror(t *testing.T) {
	state, tool := newTestMirror()
	sync := NewMirrorSynchronizer(tool, state, nil, domain.DefaultRemoteURL, "2.25.0")

	outcome, err := sync.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCloned, outcome.Action)
	assert.Equal(t, "2.43.0", outcome.ToolVersion)
	assert.Equal(t, []string{
		"version",
		"clone " + domain.DefaultRemoteURL + " /mirror",
		"sparse-checkout init /mirror",
		"sparse-checkout set /mirror data/DE",
		"checkout /mirror",
	}, tool.Calls())
	assert.Equal(t, 1, state.Resets())

	health, _ := state.Health()
	assert.Equal(t, domain.MirrorHealthy, health)
}

func TestMirrorSynchronizer_Sync_Idempotent(t *testing.T) {
	state, tool := newTestMirror()
	sync := NewMirrorSynchronizer(tool, state, nil, domain.DefaultRemoteURL, "2.25.0")
	ctx := context.Background()

	first, err := sync.Sync(ctx)
	require.NoError(t, err)
	second, err := sync.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.SyncCloned, first.Action)
	assert.Equal(t, domain.SyncPulled, second.Action)
	assert.Equal(t, 1, tool.Count("clone"))
	assert.Equal(t, 1, tool.Count("pull"))
	assert.Equal(t, 2, tool.Count("version"))
}

func TestMirrorSynchronizer_Sync_EmptyDataDirIsMissing(t *testing.T) {
	state, tool := newTestMirror()
	// Reference data present but no records under data/DE.
	state.WriteFile("data/referencedata.json", []byte(referenceJSON))
	sync := NewMirrorSynchronizer(tool, state, nil, domain.DefaultRemoteURL, "2.25.0")

	outcome, err := sync.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCloned, outcome.Action)
	assert.Equal(t, 1, state.Resets())
}

func TestMirrorSynchronizer_Sync_PreconditionFirst(t *testing.T) {
	state, tool := newTestMirror()
	tool.VersionOutput = "git version 2.20.1"
	sync := NewMirrorSynchronizer(tool, state, nil, domain.DefaultRemoteURL, "2.25.0")

	_, err := sync.Sync(context.Background())

	assert.ErrorIs(t, err, domain.ErrToolTooOld)
	assert.Equal(t, []string{"version"}, tool.Calls())
	assert.Equal(t, 0, state.Resets())
}

func TestMirrorSynchronizer_Sync_StepFailures(t *testing.T) {
	steps := []string{StepClone, StepSparseCheckoutInit, StepSparseCheckoutSet, StepCheckout}

	for _, step := range steps {
		t.Run(step, func(t *testing.T) {
			state, tool := newTestMirror()
			boom := errors.New("exit status 128")
			tool.Errs[step] = boom
			sync := NewMirrorSynchronizer(tool, state, nil, domain.DefaultRemoteURL, "2.25.0")

			_, err := sync.Sync(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMirrorSyncFailed)
			assert.ErrorIs(t, err, boom)

			var syncErr *domain.MirrorSyncError
			require.ErrorAs(t, err, &syncErr)
			assert.Equal(t, step, syncErr.Step)
		})
	}
}

func TestMirrorSynchronizer_Sync_PullFailure(t *testing.T) {
	state, tool := newTestMirror()
	state.WriteFiles(mirrorFiles())
	tool.Errs[StepPull] = errors.New("could not resolve host")
	sync := NewMirrorSynchronizer(tool, state, nil, domain.DefaultRemoteURL, "2.25.0")

	_, err := sync.Sync(context.Background())

	var syncErr *domain.MirrorSyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, StepPull, syncErr.Step)
	assert.Equal(t, 0, tool.Count("clone"))
}

func TestMirrorSynchronizer_Sync_VerifiesCheckout(t *testing.T) {
	state, tool := newTestMirror()
	// The checkout produces nothing under the data path.
	tool.Files = map[string][]byte{"README.md": []byte("# export")}
	sync := NewMirrorSynchronizer(tool, state, nil, domain.DefaultRemoteURL, "2.25.0")

	_, err := sync.Sync(context.Background())

	var syncErr *domain.MirrorSyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, StepVerify, syncErr.Step)
}

func TestMirrorSynchronizer_Status(t *testing.T) {
	t.Run("missing mirror", func(t *testing.T) {
		state, tool := newTestMirror()
		sync := NewMirrorSynchronizer(tool, state, fakeUpstream{head: "abc"}, domain.DefaultRemoteURL, "2.25.0")

		status, err := sync.Status(context.Background())

		require.NoError(t, err)
		assert.Equal(t, domain.MirrorMissing, status.Health)
		assert.Empty(t, status.LocalHead)
		assert.Equal(t, "abc", status.UpstreamHead)
		assert.False(t, status.UpToDate())
		assert.Equal(t, 0, tool.Count("head"))
	})

	t.Run("up to date", func(t *testing.T) {
		state, tool := newTestMirror()
		state.WriteFiles(mirrorFiles())
		tool.HeadCommit = "abc"
		sync := NewMirrorSynchronizer(tool, state, fakeUpstream{head: "abc"}, domain.DefaultRemoteURL, "2.25.0")

		status, err := sync.Status(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "abc", status.LocalHead)
		assert.True(t, status.UpToDate())
	})

	t.Run("upstream failure is reported", func(t *testing.T) {
		state, tool := newTestMirror()
		state.WriteFiles(mirrorFiles())
		upstreamErr := errors.New("rate limited")
		sync := NewMirrorSynchronizer(tool, state, fakeUpstream{err: upstreamErr}, domain.DefaultRemoteURL, "2.25.0")

		status, err := sync.Status(context.Background())

		require.NoError(t, err)
		assert.ErrorIs(t, status.UpstreamErr, upstreamErr)
		assert.False(t, status.UpToDate())
	})
}

func TestMirrorSynchronizer_EnsureHealthy(t *testing.T) {
	state, tool := newTestMirror()
	sync := NewMirrorSynchronizer(tool, state, nil, domain.DefaultRemoteURL, "2.25.0")

	assert.ErrorIs(t, sync.EnsureHealthy(), domain.ErrMirrorMissing)

	state.WriteFiles(mirrorFiles())
	assert.NoError(t, sync.EnsureHealthy())
	assert.Empty(t, tool.Calls())
}
