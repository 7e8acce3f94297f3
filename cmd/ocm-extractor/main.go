// Command ocm-extractor mirrors the Open Charge Map export and writes enriched
// station records.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/ocm-extractor/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ocm-extractor/internal/adapters/driven/csvfile"
	"github.com/custodia-labs/ocm-extractor/internal/adapters/driven/git"
	"github.com/custodia-labs/ocm-extractor/internal/adapters/driven/output/jsonfile"
	"github.com/custodia-labs/ocm-extractor/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ocm-extractor/internal/adapters/driven/upstream/github"
	"github.com/custodia-labs/ocm-extractor/internal/adapters/driven/web"
	"github.com/custodia-labs/ocm-extractor/internal/adapters/driving/cli"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driving"
	"github.com/custodia-labs/ocm-extractor/internal/core/services"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetWiring(wire)

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// wire builds the services from the configuration in configDir.
func wire(configDir string) (*cli.Services, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, configDir)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	tool := git.NewTool("")
	state := git.NewState(settings.Layout())
	upstream := github.NewInspector(nil, os.Getenv("GITHUB_TOKEN"))
	mirror := services.NewMirrorSynchronizer(
		tool, state, upstream,
		settings.Mirror.RemoteURL, settings.Mirror.MinToolVersion,
	)
	extractor := services.NewExtractor(
		mirror, state,
		services.NewRecordLoader(settings.Extract.PerDirectoryCap),
		services.NewMergeEngine(settings.Extract.Workers),
		jsonfile.NewWriter(),
	)

	newImporter := func(source string) (driving.StationImporter, func() error, error) {
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open station store: %w", err)
		}
		updater := store.StationUpdater()

		switch source {
		case cli.SourceOCM:
			return services.NewOCMStationImporter(extractor, updater), store.Close, nil
		case cli.SourceFrance:
			pipeline := services.NewFrancePipeline(
				web.NewLinkScraper(nil),
				web.NewDownloader(nil),
				csvfile.NewReader(),
				updater,
				settings.France,
				filepath.Clean(settings.DataDir),
			)
			return pipeline, store.Close, nil
		default:
			store.Close()
			return nil, nil, fmt.Errorf("unknown source %q", source)
		}
	}

	return &cli.Services{
		Settings:    settingsService,
		Config:      configStore,
		Mirror:      mirror,
		Extractor:   extractor,
		NewImporter: newImporter,
	}, nil
}
