package memory

import (
	"context"
	"fmt"
	"sync"

	"mempool_watcher/internal/domain"
	"mempool_watcher/internal/repository"
)

const defaultCapacity = 256

// AlertLog is an in-memory ring of the most recent alerts. The oldest entry
// is evicted once capacity is reached.
type AlertLog struct {
	mu       sync.RWMutex
	capacity int
	alerts   []domain.Alert
}

func NewAlertLog(capacity int) *AlertLog {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &AlertLog{capacity: capacity}
}

func (l *AlertLog) Save(ctx context.Context, alert domain.Alert) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.alerts = append(l.alerts, alert)
	if len(l.alerts) > l.capacity {
		l.alerts = l.alerts[len(l.alerts)-l.capacity:]
	}

	return nil
}

// GetRecent returns up to limit alerts, newest first. A limit of zero means
// everything retained.
func (l *AlertLog) GetRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", repository.ErrInvalidLimit, limit)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit == 0 || limit > len(l.alerts) {
		limit = len(l.alerts)
	}

	out := make([]domain.Alert, limit)
	for i := 0; i < limit; i++ {
		out[i] = l.alerts[len(l.alerts)-1-i]
	}

	return out, nil
}

func (l *AlertLog) Count(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.alerts), nil
}
