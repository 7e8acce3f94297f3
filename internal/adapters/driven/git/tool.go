package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// DefaultBinary is the executable looked up on PATH.
const DefaultBinary = "git"

// Ensure Tool implements the interface.
var _ driven.MirrorTool = (*Tool)(nil)

// Tool runs git as a subprocess.
type Tool struct {
	binary string
}

// NewTool creates a tool running binary. Empty means DefaultBinary.
func NewTool(binary string) *Tool {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Tool{binary: binary}
}

// CommandError is a git invocation that exited unsuccessfully.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the exec error.
func (e *CommandError) Unwrap() error { return e.Err }

// run executes git with args in dir and returns trimmed stdout.
func (t *Tool) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("git %s", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return "", &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Version runs "git --version".
func (t *Tool) Version(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "", "--version")
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", fmt.Errorf("%w: %w", domain.ErrToolMissing, err)
		}
		return "", err
	}
	return out, nil
}

// Clone makes a depth-1 clone of remoteURL into dir with no files checked out.
func (t *Tool) Clone(ctx context.Context, remoteURL, dir string) error {
	_, err := t.run(ctx, "", "clone", "--depth", "1", "--no-checkout", remoteURL, dir)
	return err
}

// SparseCheckoutInit enables cone-mode sparse checkout.
func (t *Tool) SparseCheckoutInit(ctx context.Context, repoDir string) error {
	_, err := t.run(ctx, repoDir, "sparse-checkout", "init", "--cone")
	return err
}

// SparseCheckoutSet limits the working tree to paths.
func (t *Tool) SparseCheckoutSet(ctx context.Context, repoDir string, paths ...string) error {
	args := append([]string{"sparse-checkout", "set"}, paths...)
	_, err := t.run(ctx, repoDir, args...)
	return err
}

// Checkout populates the working tree.
func (t *Tool) Checkout(ctx context.Context, repoDir string) error {
	_, err := t.run(ctx, repoDir, "checkout")
	return err
}

// Pull fast-forwards the working tree from its remote.
func (t *Tool) Pull(ctx context.Context, repoDir string) error {
	_, err := t.run(ctx, repoDir, "pull", "--ff-only")
	return err
}

// Head returns the commit hash checked out in repoDir.
func (t *Tool) Head(ctx context.Context, repoDir string) (string, error) {
	return t.run(ctx, repoDir, "rev-parse", "HEAD")
}
