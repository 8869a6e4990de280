package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/orgauns/internal/store"
	"github.com/sadopc/orgauns/internal/worker"
)

func addSync(topLevel *cobra.Command, open func() (*env, error)) {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync now and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			job := worker.NewSyncJob(e.store, e.auth, worker.NewLogNotifier(e.log), e.log)
			run, err := job.Run(cmd.Context())
			if run != nil {
				fmt.Fprintln(cmd.OutOrStdout(), run.Message)
			}
			if errors.Is(err, store.ErrNotAuthenticated) {
				return nil
			}
			return err
		},
	}
	topLevel.AddCommand(cmd)
}

func addDaemon(topLevel *cobra.Command, open func() (*env, error)) {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the sync and reminder jobs until interrupted",
		Long: `Run the sync and reminder jobs on the schedules from the config file
until SIGINT or SIGTERM. Notifications are written to the log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runDaemon(ctx, e)
		},
	}
	topLevel.AddCommand(cmd)
}

// runDaemon blocks until ctx is done.
func runDaemon(ctx context.Context, e *env) error {
	if err := e.store.Watch(ctx); err != nil {
		e.log.WithError(err).Warn("external changes will not be picked up")
	}

	n := worker.NewLogNotifier(e.log)
	sched, err := newScheduler(e, worker.NewSyncJob(e.store, e.auth, n, e.log), n)
	if err != nil {
		return err
	}
	sched.Start(ctx)
	e.log.WithField("jobs", sched.Entries()).Info("daemon started")

	<-ctx.Done()
	sched.Stop()
	e.log.Info("daemon stopped")
	return nil
}
