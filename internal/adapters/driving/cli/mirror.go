package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Manage the local mirror of the export repository",
}

var mirrorSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Clone or update the mirror",
	Long: `Clones the export repository on first use, limited to the configured data
directory. Later runs pull. A partial or empty mirror is removed and cloned again.`,
	RunE: runMirrorSync,
}

var mirrorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the mirror with its upstream",
	RunE:  runMirrorStatus,
}

func init() {
	mirrorCmd.AddCommand(mirrorSyncCmd)
	mirrorCmd.AddCommand(mirrorStatusCmd)
	rootCmd.AddCommand(mirrorCmd)
}

func runMirrorSync(cmd *cobra.Command, _ []string) error {
	var outcome domain.SyncOutcome
	err := runWithProgress(cmd.Context(), cmd, "Synchronising mirror", func(ctx context.Context) error {
		var err error
		outcome, err = app.Mirror.Sync(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Mirror %s (git %s).\n", outcome.Action, outcome.ToolVersion)
	return nil
}

func runMirrorStatus(cmd *cobra.Command, _ []string) error {
	status, err := app.Mirror.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	cmd.Printf("Root:      %s\n", status.Layout.Root)
	cmd.Printf("Data:      %s\n", status.Layout.DataPath)
	cmd.Printf("Health:    %s\n", status.Health)
	cmd.Printf("Local:     %s\n", valueOr(status.LocalHead, "(none)"))

	switch {
	case status.UpstreamErr != nil:
		cmd.Printf("Upstream:  unavailable (%v)\n", status.UpstreamErr)
	default:
		cmd.Printf("Upstream:  %s\n", valueOr(status.UpstreamHead, "(unknown)"))
	}

	if status.UpToDate() {
		cmd.Println("Mirror is up to date.")
	} else if status.Health == domain.MirrorMissing {
		cmd.Println("Run 'ocm-extractor mirror sync' to create the mirror.")
	} else if status.UpstreamErr == nil && status.UpstreamHead != "" {
		cmd.Println("Upstream has new commits.")
	}
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
