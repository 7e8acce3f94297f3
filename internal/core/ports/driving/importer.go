package driving

import (
	"context"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

// StationImporter feeds a data source into the station table.
type StationImporter interface {
	// Import runs the pipeline. With online false, previously fetched data is used.
	Import(ctx context.Context, online bool) (domain.UpdateCounts, error)

	// DataSource returns the key stations are stored under.
	DataSource() string
}
