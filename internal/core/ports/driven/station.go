package driven

import (
	"context"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

// StationUpdater upserts stations into the persistent station table.
type StationUpdater interface {
	// UpdateStation inserts or updates the station keyed by its data source and
	// external ID. A station identical to the stored row is counted as skipped.
	UpdateStation(ctx context.Context, station domain.Station, dataSourceKey string) error

	// Counts returns the tally since the updater was created.
	Counts() domain.UpdateCounts

	// LogUpdateStationCounts reports the tally through the logger.
	LogUpdateStationCounts()
}
