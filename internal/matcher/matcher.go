package matcher

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/params"

	"mempool_watcher/internal/domain"
)

// EmptySelector stands in for transactions without meaningful call data,
// which is typically a plain value transfer.
const EmptySelector = "0x00000000"

// selectorLen covers the 0x prefix plus four bytes of call data.
const selectorLen = 10

// Selector extracts the canonical method selector from hex-encoded call
// data. Inputs shorter than four data bytes map to EmptySelector. Pure and
// total, never fails.
func Selector(data string) string {
	if len(data) < selectorLen {
		return EmptySelector
	}
	return strings.ToLower(data[:selectorLen])
}

// WeiToEther converts a wei amount to whole ether as a float64. Precision
// loss at very large magnitudes is accepted; alerts are human-facing.
func WeiToEther(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	eth, _ := new(big.Float).Quo(
		new(big.Float).SetInt(wei),
		big.NewFloat(params.Ether),
	).Float64()
	return eth
}

// Match evaluates one transaction against the rule set. All four checks are
// independent and all are evaluated; the order below only fixes the order of
// the reasons list.
func Match(tx *domain.PendingTransaction, rules *domain.RuleSet) domain.Verdict {
	var reasons []string

	eth := WeiToEther(tx.Value)
	if rules.MinValue != nil && eth < *rules.MinValue {
		reasons = append(reasons, "value<"+strconv.FormatFloat(*rules.MinValue, 'f', -1, 64))
	}

	sel := Selector(tx.Data)
	if len(rules.AllowSelectors) > 0 {
		if _, ok := rules.AllowSelectors[sel]; !ok {
			reasons = append(reasons, "!allowed:"+sel)
		}
	}
	if _, ok := rules.DenySelectors[sel]; ok {
		reasons = append(reasons, "denied:"+sel)
	}

	if len(rules.WatchRecipients) > 0 {
		if _, ok := rules.WatchRecipients[strings.ToLower(tx.To)]; !ok {
			reasons = append(reasons, "!watched:to")
		}
	}

	return domain.Verdict{Accepted: len(reasons) == 0, Reasons: reasons}
}
