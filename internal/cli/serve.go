package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"activity-planner/internal/server"
	"activity-planner/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, reminders and periodic priority checks",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	a.timers.Start()
	defer a.timers.Stop()
	rebuildReminders(ctx, a)

	// SIGHUP stands in for a device restart: timers are rebuilt from the store.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				rebuildReminders(ctx, a)
			}
		}
	}()

	scheduler := service.NewSchedulerService(a.loc, logger)
	if a.cfg.PriorityCheckInterval > 0 {
		if _, err := scheduler.ScheduleInterval(a.cfg.PriorityCheckInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, _, err := a.priorities.RunPeriodicCheck(jobCtx); err != nil {
				logger.Error("priority check", slog.String("error", err.Error()))
			}
		}); err != nil {
			return fmt.Errorf("schedule priority check: %w", err)
		}
	}
	if a.cfg.DigestTime != "" {
		if _, err := scheduler.ScheduleDaily(a.cfg.DigestTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.digest.Send(jobCtx, nowIn(a.loc)); err != nil {
				logger.Error("digest", slog.String("error", err.Error()))
			}
		}); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.Info("periodic jobs started", slog.Int("jobs", scheduler.Entries()))

	srv := server.New(a.tasks, a.priorities, a.users, logger)
	httpServer := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	logger.Info("shutdown complete")
	return nil
}

func rebuildReminders(ctx context.Context, a *app) {
	if _, err := a.reminders.RescheduleAll(ctx); err != nil {
		a.logger.Error("rebuild reminders", slog.String("error", err.Error()))
		return
	}
	a.logger.Info("timers armed", slog.Int("pending", len(a.timers.Pending())))
}
