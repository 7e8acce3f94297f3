package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driving"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// Ensure OCMStationImporter implements the interface.
var _ driving.StationImporter = (*OCMStationImporter)(nil)

// OCMStationImporter feeds enriched OCM records into the station table.
type OCMStationImporter struct {
	extractor driving.Extractor
	updater   driven.StationUpdater
}

// NewOCMStationImporter creates an importer.
func NewOCMStationImporter(extractor driving.Extractor, updater driven.StationUpdater) *OCMStationImporter {
	return &OCMStationImporter{extractor: extractor, updater: updater}
}

// DataSource returns domain.DataSourceOCM.
func (i *OCMStationImporter) DataSource() string {
	return domain.DataSourceOCM
}

// Import enriches the mirror and updates one station per record.
// With online false the existing mirror is used without syncing.
func (i *OCMStationImporter) Import(ctx context.Context, online bool) (domain.UpdateCounts, error) {
	dataset, result, err := i.extractor.Enrich(ctx, driving.ExtractRequest{Offline: !online})
	if err != nil {
		return domain.UpdateCounts{}, fmt.Errorf("enrich records: %w", err)
	}

	logger.Section("Updating OCM stations")
	for _, rec := range dataset {
		if err := ctx.Err(); err != nil {
			return i.updater.Counts(), err
		}
		station, ok := MapOCMStation(rec)
		if !ok {
			logger.Warn("Skipping %s: no station ID", rec.Origin)
			continue
		}
		if err := i.updater.UpdateStation(ctx, station, i.DataSource()); err != nil {
			return i.updater.Counts(), fmt.Errorf("update station %s: %w", station.ExternalID, err)
		}
	}
	i.updater.LogUpdateStationCounts()
	logger.Info("[%s] Imported %d records", result.RunID, result.Records)
	return i.updater.Counts(), nil
}
