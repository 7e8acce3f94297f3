package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// progressInterval is how often the elapsed time is redrawn.
const progressInterval = 500 * time.Millisecond

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runWithProgress runs fn, redrawing "label... Ns" while it runs when the
// command writes to a terminal.
func runWithProgress(ctx context.Context, cmd *cobra.Command, label string, fn func(context.Context) error) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return fn(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn(ctx)
	}()

	start := time.Now()
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			// Clear the progress line.
			cmd.Print("\r\033[K")
			return err
		case <-ticker.C:
			cmd.Printf("\r%s... %ds", label, int(time.Since(start).Seconds()))
		}
	}
}
