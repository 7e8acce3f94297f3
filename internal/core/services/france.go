package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driving"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// Ensure FrancePipeline implements the interface.
var _ driving.StationImporter = (*FrancePipeline)(nil)

// FrancePipeline imports the French government charging station export.
type FrancePipeline struct {
	scraper    driven.LinkScraper
	downloader driven.Downloader
	csv        driven.CSVReader
	updater    driven.StationUpdater
	settings   domain.FranceSettings
	dataDir    string
}

// NewFrancePipeline creates the pipeline. The CSV is kept under dataDir/FR.
func NewFrancePipeline(
	scraper driven.LinkScraper,
	downloader driven.Downloader,
	csv driven.CSVReader,
	updater driven.StationUpdater,
	settings domain.FranceSettings,
	dataDir string,
) *FrancePipeline {
	return &FrancePipeline{
		scraper:    scraper,
		downloader: downloader,
		csv:        csv,
		updater:    updater,
		settings:   settings,
		dataDir:    dataDir,
	}
}

// DataSource returns domain.DataSourceFRGOV.
func (p *FrancePipeline) DataSource() string {
	return domain.DataSourceFRGOV
}

// FilePath returns where the downloaded export is stored.
func (p *FrancePipeline) FilePath() string {
	return filepath.Join(p.dataDir, "FR", p.settings.Filename)
}

// Import downloads the export when online, then updates one station per
// distinct id_station_itinerance. The first row of a duplicated ID wins.
func (p *FrancePipeline) Import(ctx context.Context, online bool) (domain.UpdateCounts, error) {
	logger.Section("Running FR GOV pipeline")
	path := p.FilePath()

	if online {
		logger.Info("Retrieving online data from %s", p.settings.LandingURL)
		link, err := ResolveSingleDownloadLink(ctx, p.scraper, p.settings.LandingURL, p.settings.LinkPrefix)
		if err != nil {
			return domain.UpdateCounts{}, err
		}
		if err := p.downloader.Download(ctx, link, path); err != nil {
			return domain.UpdateCounts{}, fmt.Errorf("download %s: %w", link, err)
		}
	}

	rows, err := p.csv.ReadFile(path)
	if err != nil {
		return domain.UpdateCounts{}, fmt.Errorf("read %s: %w", path, err)
	}
	rows = dropDuplicateRows(rows, frColumnStationID)
	logger.Info("Loaded %d distinct stations from %s", len(rows), path)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return p.updater.Counts(), err
		}
		station, ok := MapFranceStation(row)
		if !ok {
			continue
		}
		if err := p.updater.UpdateStation(ctx, station, p.DataSource()); err != nil {
			return p.updater.Counts(), fmt.Errorf("update station %s: %w", station.ExternalID, err)
		}
	}
	p.updater.LogUpdateStationCounts()
	return p.updater.Counts(), nil
}

// ResolveSingleDownloadLink scrapes pageURL for links starting with prefix and
// requires exactly one.
func ResolveSingleDownloadLink(ctx context.Context, scraper driven.LinkScraper, pageURL, prefix string) (string, error) {
	links, err := scraper.FindLinks(ctx, pageURL, prefix)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", pageURL, err)
	}
	if len(links) != 1 {
		return "", fmt.Errorf("%w: %d links with prefix %s on %s",
			domain.ErrAmbiguousOrMissingDownloadLink, len(links), prefix, pageURL)
	}
	return links[0], nil
}

// dropDuplicateRows keeps the first row for each value of column.
func dropDuplicateRows(rows []map[string]string, column string) []map[string]string {
	seen := make(map[string]bool, len(rows))
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		key := row[column]
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}
