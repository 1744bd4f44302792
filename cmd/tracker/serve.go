package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"PadelTracker/internal/api"
	"PadelTracker/internal/notifier"
	"PadelTracker/internal/scheduler"
)

var reportOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and run the scheduled refresh",
	Long: `Loads the market snapshot, serves it over HTTP, refreshes it on the
configured cron schedule and, when Telegram is configured, answers
/prices, /refresh and /analyze and sends the scheduled report.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&reportOnStart, "report-now", false, "Send a market report right after startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	defer func() {
		// Detached analyses may outlive the HTTP shutdown; let them record first.
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Analysis.Timeout+5*time.Second)
		defer cancel()
		if err := a.svc.Drain(drainCtx); err != nil {
			logger.Warn("in-flight work did not finish before shutdown", zap.Error(err))
		}
	}()

	if a.restore(logger) {
		go func() {
			if _, err := a.svc.Refresh(ctx); err != nil {
				logger.Error("initial refresh failed, serving saved snapshot", zap.Error(err))
			}
		}()
	} else if _, err := a.svc.Refresh(ctx); err != nil {
		logger.Error("initial refresh failed", zap.Error(err))
	}

	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger.Named("telegram"))
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, a.svc, sender, logger.Named("scheduler"))
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("Telegram polling started")
		if reportOnStart {
			go sched.RunReportNow()
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.SetupRoutes(api.NewHandler(a.svc, logger.Named("api"))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping...")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	logger.Info("PadelTracker stopped")
	return nil
}
