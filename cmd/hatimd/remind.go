package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozoukioden/HatimChainApp/internal/config"
	"github.com/kozoukioden/HatimChainApp/internal/sysutil"
)

func newRemindCmd() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send due chain reminders once and exit",
		Long: `Runs a single reminder sweep for deployments that schedule hatimd externally
(for example a Kubernetes CronJob) instead of running the in-process scheduler.

Reminders whose trigger time fell within the last --since are sent; run the
command at least that often so none are missed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runRemind(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, since, time.Now)
		},
	}

	cmd.Flags().DurationVar(&since, "since", 5*time.Minute, "look-back window for due reminders")
	return cmd
}

func runRemind(ctx context.Context, out, logOut io.Writer, cfg config.Config, since time.Duration, now func() time.Time) error {
	if since <= 0 {
		return errors.New("--since must be positive")
	}
	sysutil.SetupLogger(logOut, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName, "reminder")

	db, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	sched, err := newScheduler(db, cfg)
	if err != nil {
		return err
	}

	// Plan as of the start of the window, then dispatch as of now.
	start := now()
	sched.Now = func() time.Time { return start.Add(-since) }
	if _, err := sched.Sweep(ctx); err != nil {
		return fmt.Errorf("plan reminders: %w", err)
	}
	sched.Now = func() time.Time { return start }
	res, err := sched.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("send reminders: %w", err)
	}

	fmt.Fprintf(out, "reminders sent: %d, failed: %d, dropped: %d, idempotency records purged: %d\n",
		res.Sent, res.Failed, res.Dropped, res.Purged)
	return nil
}
