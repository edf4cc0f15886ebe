package repository

import (
	"context"
	"errors"

	"mempool_watcher/internal/domain"
)

// AlertRepository keeps a bounded view of recently emitted alerts for the
// ops API. Implementations are ephemeral; nothing survives a restart.
type AlertRepository interface {
	Save(ctx context.Context, alert domain.Alert) error
	GetRecent(ctx context.Context, limit int) ([]domain.Alert, error)
	Count(ctx context.Context) (int, error)
}

var ErrInvalidLimit = errors.New("invalid limit")
