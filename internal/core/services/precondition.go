package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/mod/semver"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// versionPattern matches the first dotted version in tool output, so that
// "git version 2.39.3 (Apple Git-145)" and "2.45.1.windows.1" both parse.
var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// PreconditionChecker verifies the mirroring tool before any sync.
type PreconditionChecker struct {
	tool driven.MirrorTool
}

// NewPreconditionChecker creates a checker for tool.
func NewPreconditionChecker(tool driven.MirrorTool) *PreconditionChecker {
	return &PreconditionChecker{tool: tool}
}

// Check queries the tool version and compares it against minVersion.
// Returns the parsed version (e.g. "2.43.0").
func (c *PreconditionChecker) Check(ctx context.Context, minVersion string) (string, error) {
	minimum, err := ParseToolVersion(minVersion)
	if err != nil {
		return "", fmt.Errorf("%w: minimum version %q", domain.ErrInvalidInput, minVersion)
	}

	out, err := c.tool.Version(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrToolMissing) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrToolMissing, err)
	}

	have, err := ParseToolVersion(out)
	if err != nil {
		return "", err
	}
	logger.Debug("Mirroring tool version %s (minimum %s)", have, minimum)

	if semver.Compare("v"+have, "v"+minimum) < 0 {
		return have, fmt.Errorf("%w: have %s, need >= %s", domain.ErrToolTooOld, have, minimum)
	}
	return have, nil
}

// ParseToolVersion extracts a MAJOR.MINOR[.PATCH] version from tool output.
// A missing patch component is reported as 0.
func ParseToolVersion(out string) (string, error) {
	match := versionPattern.FindString(out)
	if match == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrToolVersionUnparseable, out)
	}
	v := semver.Canonical("v" + match)
	if v == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrToolVersionUnparseable, out)
	}
	return v[1:], nil
}
