package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driving"
)

var extractOffline bool

var extractCmd = &cobra.Command{
	Use:   "extract <target.json>",
	Short: "Write the enriched station records to a JSON file",
	Long: `Synchronises the mirror, resolves every record's connection types, country
and operator against the reference data, and writes the records as one JSON
object keyed "0", "1", ... in directory walk order.

The target is replaced atomically: on failure any previous file is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractOffline, "offline", false, "use the existing mirror without syncing")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	req := driving.ExtractRequest{
		TargetPath: args[0],
		Offline:    extractOffline,
	}

	var result *driving.ExtractResult
	err := runWithProgress(cmd.Context(), cmd, "Extracting", func(ctx context.Context) error {
		var err error
		result, err = app.Extractor.Run(ctx, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	cmd.Printf("Wrote %d records to %s\n", result.Records, req.TargetPath)
	cmd.Printf("  mirror: %s\n", result.Sync.Action)
	cmd.Printf("  reference: %d connection types, %d countries, %d operators\n",
		result.ConnectionTypes, result.Countries, result.Operators)
	cmd.Printf("  took %s\n", result.Duration.Round(time.Millisecond))
	return nil
}
