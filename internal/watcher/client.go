package watcher

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// ChainClient is the slice of node functionality the watcher needs: a live
// feed of pending transaction hashes and hash-to-transaction lookup.
type ChainClient interface {
	SubscribePendingTransactions(ctx context.Context, ch chan<- common.Hash) (ethereum.Subscription, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	Close()
}

type rpcChainClient struct {
	rpc  *rpc.Client
	eth  *ethclient.Client
	geth *gethclient.Client
}

// Dial connects to a websocket RPC endpoint.
func Dial(ctx context.Context, url string) (ChainClient, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	return &rpcChainClient{
		rpc:  client,
		eth:  ethclient.NewClient(client),
		geth: gethclient.New(client),
	}, nil
}

func (c *rpcChainClient) SubscribePendingTransactions(ctx context.Context, ch chan<- common.Hash) (ethereum.Subscription, error) {
	return c.geth.SubscribePendingTransactions(ctx, ch)
}

func (c *rpcChainClient) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	return c.eth.TransactionByHash(ctx, hash)
}

func (c *rpcChainClient) Close() {
	c.rpc.Close()
}
