// Package cli provides the cobra command tree for ocm-extractor.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driving"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// version is overridden at build time.
var version = "dev"

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Services are the ports the commands run against.
type Services struct {
	Settings  driving.SettingsService
	Config    driven.ConfigStore
	Mirror    driving.MirrorService
	Extractor driving.Extractor

	// NewImporter opens the station importer for a source ("ocm" or "fr").
	// The returned close function releases the station store.
	NewImporter func(source string) (driving.StationImporter, func() error, error)
}

// Wiring builds Services from the configuration in configDir.
// An empty configDir selects the default location.
type Wiring func(configDir string) (*Services, error)

var (
	wiring Wiring
	app    *Services

	verbose   bool
	configDir string
)

// SetWiring sets how commands obtain their services.
func SetWiring(w Wiring) {
	wiring = w
}

// skipWiring marks commands that run without services.
const skipWiring = "skip-wiring"

var rootCmd = &cobra.Command{
	Use:   "ocm-extractor",
	Short: "Extract and enrich Open Charge Map station data",
	Long: `ocm-extractor keeps a sparse, shallow mirror of the Open Charge Map export,
resolves each station's connection types, country and operator against the
published reference data, and writes the enriched records as a single JSON file.

It can also load the enriched stations, and the French government registry,
into a local station database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Annotations[skipWiring] == "true" {
			return nil
		}
		return wire()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.ocm-extractor)")
}

func wire() error {
	if wiring == nil {
		return errors.New("services not configured")
	}
	services, err := wiring(configDir)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	app = services
	return nil
}

// Execute runs the root command. Cancelling ctx aborts the running command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
