package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

// Station sources accepted by the import command.
const (
	SourceOCM    = "ocm"
	SourceFrance = "fr"
)

var importOffline bool

var importCmd = &cobra.Command{
	Use:   "import <ocm|fr>",
	Short: "Load stations into the station database",
	Long: `Maps a data source onto the station schema and upserts it into the local
station database. Unchanged stations are skipped.

  ocm  enriched Open Charge Map records from the mirror
  fr   the French government charging point registry`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{SourceOCM, SourceFrance},
	RunE:      runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importOffline, "offline", false, "use previously fetched data")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) (err error) {
	source := args[0]
	if source != SourceOCM && source != SourceFrance {
		return fmt.Errorf("%w: unknown source %q (want %s or %s)", domain.ErrInvalidInput, source, SourceOCM, SourceFrance)
	}
	if app.NewImporter == nil {
		return fmt.Errorf("station import not configured")
	}

	importer, closeFn, err := app.NewImporter(source)
	if err != nil {
		return fmt.Errorf("open importer: %w", err)
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("close station store: %w", cerr)
		}
	}()

	var counts domain.UpdateCounts
	label := fmt.Sprintf("Importing %s", importer.DataSource())
	err = runWithProgress(cmd.Context(), cmd, label, func(ctx context.Context) error {
		var err error
		counts, err = importer.Import(ctx, !importOffline)
		return err
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("%s: %d created, %d updated, %d unchanged\n",
		importer.DataSource(), counts.Created, counts.Updated, counts.Skipped)
	return nil
}
