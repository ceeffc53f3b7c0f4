package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/kozoukioden/HatimChainApp/internal/config"
	httpapi "github.com/kozoukioden/HatimChainApp/internal/http"
	"github.com/kozoukioden/HatimChainApp/internal/notify"
	"github.com/kozoukioden/HatimChainApp/internal/observability"
	"github.com/kozoukioden/HatimChainApp/internal/repo"
	"github.com/kozoukioden/HatimChainApp/internal/services"
	"github.com/kozoukioden/HatimChainApp/internal/sysutil"
)

const shutdownGrace = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		addr        string
		noReminders bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		Long: `Runs the chain API until SIGINT or SIGTERM, then drains in-flight requests.

The schema is migrated on start. Unless REMINDER_ENABLED=false or --no-reminders
is given, the reminder scheduler runs in the same process on REMINDER_SPEC.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if noReminders {
				cfg.Reminder.Enabled = false
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.ErrOrStderr(), cfg, sysutil.FirstNonEmpty(addr, ":"+cfg.Port), nil)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default \":$PORT\")")
	cmd.Flags().BoolVar(&noReminders, "no-reminders", false, "do not run the reminder scheduler")
	return cmd
}

// openStore opens and migrates the configured database.
func openStore(cfg config.Config) (*gorm.DB, func(), error) {
	db, err := repo.Open(cfg.DB.Driver, cfg.DB.DSN, cfg.OTEL.Enabled)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, closeFn, nil
}

// newScheduler wires the reminder scheduler to the chain store and the
// configured sender. Each sweep also purges expired idempotency records.
func newScheduler(db *gorm.DB, cfg config.Config) (*notify.Scheduler, error) {
	sender, err := notify.NewSender(cfg.Reminder)
	if err != nil {
		return nil, err
	}
	s := notify.NewScheduler(httpapi.NewChainService(db, cfg, nil), sender)
	s.Purge = func(ctx context.Context, now time.Time) (int64, error) {
		return repo.PurgeExpiredIdempotency(ctx, db, now)
	}
	return s, nil
}

// runServe blocks until ctx is done or the listener fails. ready, when set,
// receives the bound address once the server accepts connections.
func runServe(ctx context.Context, logOut io.Writer, cfg config.Config, addr string, ready chan<- string) error {
	logger := sysutil.SetupLogger(logOut, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName, "api")
	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, Version, "api")
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		fctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(fctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	var events services.EventSink
	if cfg.Reminder.Enabled {
		sched, err := newScheduler(db, cfg)
		if err != nil {
			return err
		}
		if err := sched.Start(cfg.Reminder.Spec); err != nil {
			return fmt.Errorf("reminders: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			_ = sched.Stop(sctx)
		}()
		events = sched
		logger.Info().Str("spec", cfg.Reminder.Spec).Str("sender", cfg.Reminder.Sender).Msg("reminder scheduler started")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg, events)

	srv := &http.Server{
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	logger.Info().Str("addr", ln.Addr().String()).Str("version", Version).Str("db", cfg.DB.Driver).Msg("listening")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
