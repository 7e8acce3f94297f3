// Package github queries GitHub for the state of the upstream export repository.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

var _ driven.UpstreamInspector = (*Inspector)(nil)

// Inspector resolves the head commit of a repository's default branch.
type Inspector struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// NewInspector creates an inspector. An empty token uses the anonymous quota.
// A nil httpClient uses one with DefaultTimeout.
func NewInspector(httpClient *http.Client, token string) *Inspector {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Inspector{
		gh:          client,
		rateLimiter: NewRateLimiter(),
	}
}

// HeadCommit returns the commit at the tip of the default branch of remoteURL.
func (i *Inspector) HeadCommit(ctx context.Context, remoteURL string) (string, error) {
	owner, repo, err := ParseRepoURL(remoteURL)
	if err != nil {
		return "", err
	}

	if err := i.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	repository, resp, err := i.gh.Repositories.Get(ctx, owner, repo)
	i.updateRateLimitFromResponse(resp)
	if err != nil {
		return "", i.wrapError(err, "get repo")
	}

	branch := repository.GetDefaultBranch()
	if branch == "" {
		return "", fmt.Errorf("github: %s/%s has no default branch", owner, repo)
	}

	if err := i.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	sha, resp, err := i.gh.Repositories.GetCommitSHA1(ctx, owner, repo, branch, "")
	i.updateRateLimitFromResponse(resp)
	if err != nil {
		return "", i.wrapError(err, "get commit")
	}

	logger.Debug("Upstream %s/%s@%s is at %s (%d requests left)", owner, repo, branch, sha, i.rateLimiter.Remaining())
	return strings.TrimSpace(sha), nil
}

// ParseRepoURL extracts owner and repository from an https or scp-style
// GitHub remote.
func ParseRepoURL(remoteURL string) (owner, repo string, err error) {
	var repoPath string
	switch {
	case strings.HasPrefix(remoteURL, "git@github.com:"):
		repoPath = strings.TrimPrefix(remoteURL, "git@github.com:")
	default:
		u, perr := url.Parse(remoteURL)
		if perr != nil || u.Host != "github.com" {
			return "", "", fmt.Errorf("%w: %s", ErrNotGitHubURL, remoteURL)
		}
		repoPath = strings.TrimPrefix(u.Path, "/")
	}

	repoPath = strings.TrimSuffix(strings.TrimSuffix(repoPath, "/"), ".git")
	parts := strings.Split(repoPath, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrNotGitHubURL, remoteURL)
	}
	return parts[0], parts[1], nil
}

func (i *Inspector) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	i.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (i *Inspector) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
