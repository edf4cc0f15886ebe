package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"mempool_watcher/internal/domain"
	"mempool_watcher/internal/matcher"
	"mempool_watcher/internal/repository"
	"mempool_watcher/internal/service"
	"mempool_watcher/pkg/metrics"
)

// Watcher consumes the pending-transaction feed and runs each transaction
// through the rule set. Every notification is handled independently; a
// failed lookup abandons that one evaluation and nothing else.
type Watcher struct {
	client  ChainClient
	rules   *domain.RuleSet
	alerts  *service.AlertService
	history repository.AlertRepository
	metrics *metrics.Collector
	logger  *slog.Logger
}

func New(
	client ChainClient,
	rules *domain.RuleSet,
	alerts *service.AlertService,
	history repository.AlertRepository,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector(logger)
	}

	return &Watcher{
		client:  client,
		rules:   rules,
		alerts:  alerts,
		history: history,
		metrics: collector,
		logger:  logger,
	}
}

// Run subscribes and blocks until the context is canceled or the
// subscription fails. A failed initial subscription is a startup error.
func (w *Watcher) Run(ctx context.Context) error {
	hashes := make(chan common.Hash, 512)

	sub, err := w.client.SubscribePendingTransactions(ctx, hashes)
	if err != nil {
		return fmt.Errorf("subscribe to pending transactions: %w", err)
	}
	defer sub.Unsubscribe()

	w.logger.Info("Subscribed to pending transactions")

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return fmt.Errorf("pending transaction subscription: %w", err)
		case hash := <-hashes:
			w.metrics.RecordPending()
			go w.handlePending(ctx, hash)
		}
	}
}

func (w *Watcher) handlePending(ctx context.Context, hash common.Hash) {
	tx, _, err := w.client.TransactionByHash(ctx, hash)
	if err != nil || tx == nil {
		// Already dropped from the pool or a transient lookup failure.
		// Abandon this evaluation; no retry.
		w.metrics.RecordFetchError()
		w.logger.Debug("Pending transaction lookup failed",
			slog.String("hash", hash.Hex()))
		return
	}

	ptx := toPendingTransaction(tx)
	verdict := matcher.Match(ptx, w.rules)
	eth := matcher.WeiToEther(ptx.Value)
	w.metrics.RecordVerdict(verdict.Accepted, eth)

	if !verdict.Accepted {
		w.logger.Debug("Transaction rejected",
			slog.String("hash", ptx.Hash),
			slog.Any("reasons", verdict.Reasons))
		return
	}

	alert := domain.NewAlert(ptx, eth, matcher.Selector(ptx.Data))
	if w.history != nil {
		if err := w.history.Save(ctx, alert); err != nil {
			w.logger.Debug("Failed to record alert",
				slog.String("hash", alert.Hash),
				slog.String("error", err.Error()))
		}
	}
	w.alerts.Publish(ctx, alert)
}

func toPendingTransaction(tx *types.Transaction) *domain.PendingTransaction {
	ptx := &domain.PendingTransaction{
		Hash:  tx.Hash().Hex(),
		Value: tx.Value(),
		Data:  hexutil.Encode(tx.Data()),
		Nonce: tx.Nonce(),
	}

	if from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx); err == nil {
		ptx.From = strings.ToLower(from.Hex())
	}
	if to := tx.To(); to != nil {
		ptx.To = strings.ToLower(to.Hex())
	}

	return ptx
}
