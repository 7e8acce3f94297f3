package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headSHA = "3f786850e387550fdab836ed7e6dc881de23001b"

func newTestInspector(t *testing.T, handler http.Handler) *Inspector {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	inspector := NewInspector(srv.Client(), "")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	inspector.gh.BaseURL = base
	return inspector
}

func upstreamHandler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/openchargemap/ocm-export", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRateRemaining, "58")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"ocm-export","default_branch":"main"}`))
	})
	mux.HandleFunc("/repos/openchargemap/ocm-export/commits/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "sha")
		w.Header().Set(HeaderRateRemaining, "57")
		_, _ = w.Write([]byte(headSHA))
	})
	return mux
}

func TestInspector_HeadCommit(t *testing.T) {
	inspector := newTestInspector(t, upstreamHandler(t))

	sha, err := inspector.HeadCommit(context.Background(), "https://github.com/openchargemap/ocm-export")

	require.NoError(t, err)
	assert.Equal(t, headSHA, sha)
	assert.Equal(t, 57, inspector.rateLimiter.Remaining())
}

func TestInspector_NotFound(t *testing.T) {
	inspector := newTestInspector(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))

	_, err := inspector.HeadCommit(context.Background(), "https://github.com/openchargemap/missing")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestInspector_RejectsNonGitHubRemote(t *testing.T) {
	inspector := NewInspector(nil, "")

	_, err := inspector.HeadCommit(context.Background(), "https://gitlab.com/a/b")

	assert.ErrorIs(t, err, ErrNotGitHubURL)
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		owner string
		repo  string
		ok    bool
	}{
		{"https", "https://github.com/openchargemap/ocm-export", "openchargemap", "ocm-export", true},
		{"https with .git", "https://github.com/openchargemap/ocm-export.git", "openchargemap", "ocm-export", true},
		{"trailing slash", "https://github.com/openchargemap/ocm-export/", "openchargemap", "ocm-export", true},
		{"scp style", "git@github.com:openchargemap/ocm-export.git", "openchargemap", "ocm-export", true},
		{"other host", "https://example.com/a/b", "", "", false},
		{"missing repo", "https://github.com/openchargemap", "", "", false},
		{"too deep", "https://github.com/a/b/tree/main", "", "", false},
		{"local path", "/srv/mirror.git", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.url)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrNotGitHubURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

func TestRateLimiter_ExhaustedQuota(t *testing.T) {
	limiter := NewRateLimiter()
	reset := time.Now().Add(time.Hour)

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "0")
	resp.Header.Set(HeaderRateLimit, "60")
	resp.Header.Set(HeaderRateReset, strconv.FormatInt(reset.Unix(), 10))
	limiter.UpdateFromResponse(resp)

	err := limiter.Wait(context.Background())

	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, 60, limiter.Limit())
	assert.Equal(t, reset.Unix(), limiter.ResetTime().Unix())
}

func TestRateLimiter_ExpiredResetAllowsRequests(t *testing.T) {
	limiter := NewRateLimiter()

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "0")
	resp.Header.Set(HeaderRateReset, strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10))
	limiter.UpdateFromResponse(resp)

	assert.NoError(t, limiter.Wait(context.Background()))
}
