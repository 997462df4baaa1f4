package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pablasso/oracle/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the task loop in the terminal",
	Long:  `Show a live terminal view of the state document, reloading whenever it changes.`,
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	return tui.Run(newStore(), tui.Options{
		Refresh: time.Duration(cfg.Dashboard.RefreshSeconds) * time.Second,
		LogTail: cfg.Dashboard.LogTail,
	}, logger)
}
