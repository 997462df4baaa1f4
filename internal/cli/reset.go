package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pablasso/oracle/internal/state"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default state document",
	Long:  `Overwrite the state document with the default, including the bootstrap task queue. Refuses while a task loop is running against it.`,
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	store := newStore()
	lock := state.NewWriterLock(store.Path())

	// Hold the writer lock for the reset so a loop cannot start mid-write.
	if err := lock.Acquire(); err != nil {
		return fmt.Errorf("cannot reset while the task loop is running: %w", err)
	}
	defer lock.Release()

	st, err := store.Reset()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reset %s (%d tasks queued)\n", store.Path(), len(st.Next))
	return nil
}
