package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

// Extractor runs the synchronise, load, merge and write pipeline.
type Extractor interface {
	// Run executes one extraction. Either the target file is fully written or
	// it is not touched.
	Run(ctx context.Context, req ExtractRequest) (*ExtractResult, error)

	// Enrich runs everything but the final write and returns the dataset.
	Enrich(ctx context.Context, req ExtractRequest) (domain.EnrichedDataset, *ExtractResult, error)
}

// ExtractRequest configures one extraction.
type ExtractRequest struct {
	// TargetPath is the output file. Required by Run, ignored by Enrich.
	TargetPath string

	// Offline skips the precondition check and the mirror sync.
	// The mirror must already be populated.
	Offline bool
}

// ExtractResult summarises a completed extraction.
type ExtractResult struct {
	// RunID identifies the run in logs.
	RunID string

	Sync            domain.SyncOutcome
	Records         int
	ConnectionTypes int
	Countries       int
	Operators       int
	Duration        time.Duration
}
