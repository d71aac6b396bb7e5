// ABOUTME: TUI command for the inventory-admin CLI
// ABOUTME: Opens the interactive admin panel, resuming a stored session when valid

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ptisa/inventory-admin/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive admin panel",
	Long: `Open the interactive admin panel. A valid stored session skips the login
screen. Logs are written to debug.log in the config directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, logFile, runTUI)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI starts the bubbletea program and returns exit code
func runTUI(ctx context.Context, w io.Writer, rt *runtime) int {
	if err := rt.sess.Restore(); err != nil {
		slog.Info("Stored session not resumed", "error", err)
	}

	if err := tui.Run(rt.client, rt.sess); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}
