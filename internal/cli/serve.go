package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pablasso/oracle/internal/dashboard"
	"github.com/pablasso/oracle/internal/loop"
	"github.com/pablasso/oracle/internal/state"
	"github.com/pablasso/oracle/internal/util"
)

// runServe starts the task loop in the background and serves the dashboard
// in the foreground until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "ORACLE running at http://%s\n", cfg.ListenAddr)
	return serve(ctx, newStore())
}

// serve runs the loop and the dashboard until ctx is done or either fails.
// A failure in one stops the other.
func serve(ctx context.Context, store *state.Store) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Settle a missing or corrupt document before any reader can race the
	// loop to repair it.
	if _, err := store.Load(); err != nil {
		return fmt.Errorf("failed to prepare state: %w", err)
	}

	l, err := newLoop(store)
	if err != nil {
		return err
	}

	srv := &dashboard.Server{
		Logger: logger,
		Store:  store,
		Options: dashboard.Options{
			RefreshSeconds: cfg.Dashboard.RefreshSeconds,
			LogTail:        cfg.Dashboard.LogTail,
		},
	}

	loopErr := make(chan error, 1)
	go func() {
		err := l.Run(ctx)
		if err != nil {
			logger.Error("task loop stopped", "err", err)
			cancel()
		}
		loopErr <- err
	}()

	serveErr := srv.ListenAndServe(ctx, cfg.ListenAddr)
	cancel()

	return errors.Join(serveErr, <-loopErr)
}

func newLoop(store *state.Store) (*loop.Loop, error) {
	l := loop.New(store, loop.Options{
		IdleInterval: cfg.Loop.IdleInterval(),
		WorkDelay:    cfg.Loop.WorkDelay(),
		SettleDelay:  cfg.Loop.SettleDelay(),
	}).WithLogger(logger)

	if cfg.Loop.Progress {
		runID, err := util.GenerateShortID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate run id: %w", err)
		}
		l.WithProgress(state.NewProgressLogger(store.Path(), runID))
	}
	return l, nil
}
