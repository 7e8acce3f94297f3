package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify git is installed and recent enough",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	toolVersion, err := app.Mirror.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("precondition failed: %w", err)
	}
	cmd.Printf("git %s OK\n", toolVersion)
	return nil
}
