package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry      *prometheus.Registry
	pendingSeen   prometheus.Counter
	fetchErrors   prometheus.Counter
	txAccepted    prometheus.Counter
	txRejected    prometheus.Counter
	alertsEmitted prometheus.Counter
	alertsDropped prometheus.Counter
	alertValueEth prometheus.Histogram
	logger        *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		pendingSeen: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "mempool_pending_seen_total",
			Help: "Total number of pending transaction notifications received",
		}),
		fetchErrors: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "mempool_fetch_errors_total",
			Help: "Total number of abandoned transaction lookups",
		}),
		txAccepted: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "mempool_transactions_accepted_total",
			Help: "Total number of transactions that passed the rule set",
		}),
		txRejected: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "mempool_transactions_rejected_total",
			Help: "Total number of transactions rejected by the rule set",
		}),
		alertsEmitted: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "mempool_alerts_emitted_total",
			Help: "Total number of alerts delivered to sinks",
		}),
		alertsDropped: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "mempool_alerts_dropped_total",
			Help: "Total number of alerts dropped by queue overflow or rate limiting",
		}),
		alertValueEth: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "mempool_alert_value_eth",
			Help:    "ETH value distribution of accepted transactions",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 50, 100, 1000},
		}),
		logger: logger,
	}
}

func (c *Collector) RecordPending() {
	c.pendingSeen.Inc()
}

func (c *Collector) RecordFetchError() {
	c.fetchErrors.Inc()
}

func (c *Collector) RecordVerdict(accepted bool, eth float64) {
	if accepted {
		c.txAccepted.Inc()
		c.alertValueEth.Observe(eth)
	} else {
		c.txRejected.Inc()
	}
}

func (c *Collector) RecordAlertEmitted() {
	c.alertsEmitted.Inc()
}

func (c *Collector) RecordAlertDropped() {
	c.alertsDropped.Inc()
}

func (c *Collector) GetHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.GetHandler())

	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		c.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (c *Collector) Shutdown(ctx context.Context) error {
	c.logger.Info("Metrics collector shutdown complete")
	return nil
}
