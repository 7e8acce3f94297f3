package driven

import (
	"context"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

// DatasetWriter persists an enriched dataset.
type DatasetWriter interface {
	// Write re-indexes dataset to 0..n-1 and replaces targetPath with it.
	// On failure the previous content of targetPath, if any, is left untouched.
	Write(ctx context.Context, dataset domain.EnrichedDataset, targetPath string) error
}
