package driven

import "context"

// UpstreamInspector queries the hosting service of the upstream repository.
type UpstreamInspector interface {
	// HeadCommit returns the commit at the tip of the default branch of remoteURL.
	HeadCommit(ctx context.Context, remoteURL string) (string, error)
}
