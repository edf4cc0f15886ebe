package domain

import (
	"math/big"
	"strings"
	"time"
)

const AlertTypeMempool = "mempool_alert"

// PendingTransaction is a read-only view of one transaction observed in the
// mempool. Fields default safely: a nil Value counts as zero, a contract
// creation has an empty To, and From stays empty when sender recovery fails.
type PendingTransaction struct {
	Hash  string
	From  string
	To    string
	Value *big.Int
	Data  string
	Nonce uint64
}

// Alert is the record emitted for every transaction that passes the rule
// set, serialized as one JSON object per line.
type Alert struct {
	Type      string  `json:"type"`
	Hash      string  `json:"hash"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Eth       float64 `json:"eth"`
	Selector  string  `json:"selector"`
	Nonce     uint64  `json:"nonce"`
	Timestamp int64   `json:"timestamp"`
}

func NewAlert(tx *PendingTransaction, eth float64, selector string) Alert {
	return Alert{
		Type:      AlertTypeMempool,
		Hash:      strings.ToLower(tx.Hash),
		From:      strings.ToLower(tx.From),
		To:        strings.ToLower(tx.To),
		Eth:       eth,
		Selector:  selector,
		Nonce:     tx.Nonce,
		Timestamp: time.Now().Unix(),
	}
}
