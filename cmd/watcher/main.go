package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mempool_watcher/internal/api"
	"mempool_watcher/internal/config"
	"mempool_watcher/internal/repository/memory"
	"mempool_watcher/internal/service"
	"mempool_watcher/internal/watcher"
	"mempool_watcher/pkg/crypto"
	"mempool_watcher/pkg/metrics"
)

const appName = "mempool_watcher"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	logger.Info("Starting application",
		slog.String("name", appName),
		slog.String("endpoint", cfg.RPCURL))

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		logger.Error("Failed to load rule set", slog.String("error", err.Error()))
		os.Exit(1)
	}

	collector := metrics.NewCollector(logger)
	alertLog := memory.NewAlertLog(cfg.AlertHistory)
	alertService := setupAlertService(cfg, collector, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := watcher.Dial(ctx, cfg.RPCURL)
	if err != nil {
		logger.Error("Failed to connect to RPC endpoint",
			slog.String("endpoint", cfg.RPCURL),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer client.Close()

	w := watcher.New(client, rules, alertService, alertLog, collector, logger)

	metricsServer := collector.StartMetricsServer(cfg.MetricsAddr)
	apiServer := startAPIServer(cfg.APIAddr, api.NewHandler(rules, alertLog, logger), logger)

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	exitCode := waitForShutdown(logger, runErr)

	// In-flight evaluations are abandoned, not drained.
	cancel()
	client.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown failed", slog.String("error", err.Error()))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
	}
	if err := alertService.Shutdown(shutdownCtx); err != nil {
		logger.Error("Alert service shutdown failed", slog.String("error", err.Error()))
	}

	logger.Info("Application shutdown complete")
	os.Exit(exitCode)
}

// Diagnostics go to stderr; stdout is reserved for alert output.
func setupLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func setupAlertService(cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) *service.AlertService {
	sinks := []service.Sink{service.NewStdoutSink(os.Stdout)}

	if cfg.WebhookURL != "" {
		var signer *crypto.Signer
		if cfg.WebhookSecret != "" {
			signer = crypto.NewSigner(cfg.WebhookSecret, logger)
		}
		sinks = append(sinks, service.NewWebhookSink(cfg.WebhookURL, signer))
	}

	return service.NewAlertService(sinks, cfg.Workers, cfg.MaxAlertsPerSec, collector, logger)
}

func startAPIServer(addr string, handler *api.Handler, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting API server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(logger *slog.Logger, runErr <-chan error) int {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("Shutdown signal received")
		return 0
	case err := <-runErr:
		if err != nil {
			logger.Error("Watcher stopped", slog.String("error", err.Error()))
			return 1
		}
		return 0
	}
}
