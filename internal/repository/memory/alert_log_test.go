package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mempool_watcher/internal/domain"
	"mempool_watcher/internal/repository"
)

func TestAlertLog_SaveAndGetRecent(t *testing.T) {
	ctx := context.Background()
	log := NewAlertLog(10)

	for i := 0; i < 3; i++ {
		alert := domain.Alert{Type: domain.AlertTypeMempool, Hash: fmt.Sprintf("0x%d", i)}
		if err := log.Save(ctx, alert); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	recent, err := log.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(recent))
	}
	if recent[0].Hash != "0x2" || recent[1].Hash != "0x1" {
		t.Errorf("expected newest first, got %v", recent)
	}
}

func TestAlertLog_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	log := NewAlertLog(2)

	for i := 0; i < 5; i++ {
		_ = log.Save(ctx, domain.Alert{Hash: fmt.Sprintf("0x%d", i)})
	}

	count, _ := log.Count(ctx)
	if count != 2 {
		t.Fatalf("expected 2 retained alerts, got %d", count)
	}

	recent, _ := log.GetRecent(ctx, 0)
	if recent[0].Hash != "0x4" || recent[1].Hash != "0x3" {
		t.Errorf("expected the two newest alerts, got %v", recent)
	}
}

func TestAlertLog_NegativeLimit(t *testing.T) {
	log := NewAlertLog(4)

	_, err := log.GetRecent(context.Background(), -1)

	if !errors.Is(err, repository.ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestAlertLog_ZeroLimitReturnsAll(t *testing.T) {
	ctx := context.Background()
	log := NewAlertLog(4)
	_ = log.Save(ctx, domain.Alert{Hash: "0x1"})
	_ = log.Save(ctx, domain.Alert{Hash: "0x2"})

	recent, err := log.GetRecent(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected all alerts, got %d", len(recent))
	}
}
