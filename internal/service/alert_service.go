package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"mempool_watcher/internal/domain"
	"mempool_watcher/pkg/metrics"
)

// Sink delivers one alert to a destination. Delivery failures are logged and
// swallowed; alerting is best-effort by design.
type Sink interface {
	Name() string
	Deliver(alert domain.Alert) error
}

type AlertService struct {
	sinks        []Sink
	queue        chan domain.Alert
	workers      int
	limiter      *rate.Limiter
	metrics      *metrics.Collector
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	logger       *slog.Logger
}

// NewAlertService starts a worker pool fanning alerts out to the given
// sinks. maxPerSec caps emission globally; zero means no cap.
func NewAlertService(
	sinks []Sink,
	workers int,
	maxPerSec float64,
	collector *metrics.Collector,
	logger *slog.Logger,
) *AlertService {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector(logger)
	}
	if workers <= 0 {
		workers = 1
	}

	var limiter *rate.Limiter
	if maxPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(maxPerSec), 1)
	}

	service := &AlertService{
		sinks:        sinks,
		queue:        make(chan domain.Alert, 1000),
		workers:      workers,
		limiter:      limiter,
		metrics:      collector,
		shutdownChan: make(chan struct{}),
		logger:       logger,
	}

	service.startWorkers()

	return service
}

// Publish enqueues one alert without blocking. Alerts over the rate cap or
// past a full queue are dropped and counted.
func (s *AlertService) Publish(ctx context.Context, alert domain.Alert) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.metrics.RecordAlertDropped()
		s.logger.Debug("Alert rate limited",
			slog.String("hash", alert.Hash))
		return
	}

	select {
	case s.queue <- alert:
	default:
		s.metrics.RecordAlertDropped()
		s.logger.Warn("Alert queue full, dropping alert",
			slog.String("hash", alert.Hash))
	}
}

func (s *AlertService) startWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func (s *AlertService) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case alert := <-s.queue:
			s.deliver(alert, id)
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *AlertService) deliver(alert domain.Alert, workerID int) {
	start := time.Now()

	for _, sink := range s.sinks {
		if err := sink.Deliver(alert); err != nil {
			s.logger.Error("Failed to deliver alert",
				slog.String("sink", sink.Name()),
				slog.String("hash", alert.Hash),
				slog.String("error", err.Error()),
				slog.Int("worker_id", workerID))
		}
	}

	s.metrics.RecordAlertEmitted()
	s.logger.Debug("Alert delivered",
		slog.String("hash", alert.Hash),
		slog.Int("worker_id", workerID),
		slog.Duration("duration", time.Since(start)))
}

func (s *AlertService) Shutdown(ctx context.Context) error {
	close(s.shutdownChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Alert service shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CaptureSink records delivered alerts for tests.
type CaptureSink struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

func (c *CaptureSink) Name() string { return "capture" }

func (c *CaptureSink) Deliver(alert domain.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, alert)
	return nil
}

func (c *CaptureSink) Alerts() []domain.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}
