package matcher

import (
	"math/big"
	"reflect"
	"testing"

	"mempool_watcher/internal/domain"
)

func TestSelector_ShortOrMissingData(t *testing.T) {
	for _, data := range []string{"", "0x", "0x095ea7b", "abc"} {
		if got := Selector(data); got != EmptySelector {
			t.Errorf("Selector(%q) = %q, want %q", data, got, EmptySelector)
		}
	}
}

func TestSelector_ExtractsAndLowercases(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{"0x095ea7b3000000000000000000000000", "0x095ea7b3"},
		{"0x095EA7B3000000000000000000000000", "0x095ea7b3"},
		{"0XA9059CBB", "0xa9059cbb"},
		{"0x00000000ff", "0x00000000"},
	}
	for _, tc := range tests {
		if got := Selector(tc.data); got != tc.want {
			t.Errorf("Selector(%q) = %q, want %q", tc.data, got, tc.want)
		}
	}
}

func TestWeiToEther(t *testing.T) {
	if got := WeiToEther(nil); got != 0 {
		t.Errorf("WeiToEther(nil) = %f, want 0", got)
	}
	two := new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18))
	if got := WeiToEther(two); got != 2.0 {
		t.Errorf("WeiToEther(2e18) = %f, want 2.0", got)
	}
	if got := WeiToEther(big.NewInt(1e17)); got != 0.1 {
		t.Errorf("WeiToEther(1e17) = %f, want 0.1", got)
	}
}

func TestWeiToEther_Monotonic(t *testing.T) {
	amounts := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(1e9),
		big.NewInt(1e18),
		new(big.Int).Mul(big.NewInt(1e18), big.NewInt(1e6)),
	}
	prev := WeiToEther(amounts[0])
	for _, a := range amounts[1:] {
		cur := WeiToEther(a)
		if cur < prev {
			t.Fatalf("WeiToEther not monotonic: %f < %f at %s", cur, prev, a)
		}
		prev = cur
	}
}

func TestMatch_EmptyRuleSetAcceptsEverything(t *testing.T) {
	rules := domain.NewRuleSet(nil, nil, nil, nil)
	tx := &domain.PendingTransaction{
		Hash:  "0x1",
		Value: big.NewInt(0),
		Data:  "0x",
	}

	verdict := Match(tx, rules)

	if !verdict.Accepted {
		t.Errorf("expected acceptance, got reasons %v", verdict.Reasons)
	}
	if len(verdict.Reasons) != 0 {
		t.Errorf("expected empty reasons, got %v", verdict.Reasons)
	}
}

func TestMatch_DeniedSelector(t *testing.T) {
	minValue := 0.5
	rules := domain.NewRuleSet(&minValue, nil, []string{"0x095ea7b3"}, nil)
	tx := &domain.PendingTransaction{
		Hash:  "0x1",
		From:  "0xdef",
		To:    "0xabc",
		Value: new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)),
		Data:  "0x095ea7b3000000000000000000000000",
		Nonce: 5,
	}

	verdict := Match(tx, rules)

	if verdict.Accepted {
		t.Fatal("expected rejection")
	}
	found := false
	for _, r := range verdict.Reasons {
		if r == "denied:0x095ea7b3" {
			found = true
		}
		if r == "value<0.5" {
			t.Errorf("value check should pass at 2.0 ETH, got reason %q", r)
		}
	}
	if !found {
		t.Errorf("expected 'denied:0x095ea7b3' in reasons, got %v", verdict.Reasons)
	}
}

func TestMatch_BelowMinValue(t *testing.T) {
	minValue := 0.5
	rules := domain.NewRuleSet(&minValue, nil, []string{"0x095ea7b3"}, nil)
	tx := &domain.PendingTransaction{
		Hash:  "0x2",
		Value: big.NewInt(1e17),
		Data:  "0x",
	}

	verdict := Match(tx, rules)

	if verdict.Accepted {
		t.Fatal("expected rejection")
	}
	want := []string{"value<0.5"}
	if !reflect.DeepEqual(verdict.Reasons, want) {
		t.Errorf("expected reasons %v, got %v", want, verdict.Reasons)
	}
}

func TestMatch_UnwatchedRecipient(t *testing.T) {
	rules := domain.NewRuleSet(nil, nil, nil, []string{"0xaaa"})
	tx := &domain.PendingTransaction{
		Hash: "0x3",
		To:   "0xBBB",
	}

	verdict := Match(tx, rules)

	if verdict.Accepted {
		t.Fatal("expected rejection")
	}
	want := []string{"!watched:to"}
	if !reflect.DeepEqual(verdict.Reasons, want) {
		t.Errorf("expected reasons %v, got %v", want, verdict.Reasons)
	}
}

func TestMatch_WatchedRecipientCaseInsensitive(t *testing.T) {
	rules := domain.NewRuleSet(nil, nil, nil, []string{"0xAAA"})
	tx := &domain.PendingTransaction{
		Hash: "0x4",
		To:   "0xaAa",
	}

	if verdict := Match(tx, rules); !verdict.Accepted {
		t.Errorf("expected acceptance, got reasons %v", verdict.Reasons)
	}
}

func TestMatch_AllowListMiss(t *testing.T) {
	rules := domain.NewRuleSet(nil, []string{"0xa9059cbb"}, nil, nil)
	tx := &domain.PendingTransaction{
		Hash: "0x5",
		Data: "0x095ea7b3000000000000000000000000",
	}

	verdict := Match(tx, rules)

	if verdict.Accepted {
		t.Fatal("expected rejection")
	}
	want := []string{"!allowed:0x095ea7b3"}
	if !reflect.DeepEqual(verdict.Reasons, want) {
		t.Errorf("expected reasons %v, got %v", want, verdict.Reasons)
	}
}

func TestMatch_ChecksAreNotShortCircuited(t *testing.T) {
	minValue := 1.0
	rules := domain.NewRuleSet(&minValue, []string{"0xa9059cbb"}, []string{"0x095ea7b3"}, []string{"0xaaa"})
	tx := &domain.PendingTransaction{
		Hash: "0x6",
		To:   "0xbbb",
		Data: "0x095ea7b3000000000000000000000000",
	}

	verdict := Match(tx, rules)

	want := []string{"value<1", "!allowed:0x095ea7b3", "denied:0x095ea7b3", "!watched:to"}
	if !reflect.DeepEqual(verdict.Reasons, want) {
		t.Errorf("expected all four reasons %v, got %v", want, verdict.Reasons)
	}
}

func TestMatch_IsPure(t *testing.T) {
	minValue := 0.5
	rules := domain.NewRuleSet(&minValue, nil, []string{"0x095ea7b3"}, []string{"0xaaa"})
	tx := &domain.PendingTransaction{
		Hash:  "0x7",
		To:    "0xccc",
		Value: big.NewInt(1e17),
		Data:  "0x095ea7b300",
	}

	first := Match(tx, rules)
	for i := 0; i < 5; i++ {
		if got := Match(tx, rules); !reflect.DeepEqual(got, first) {
			t.Fatalf("verdict changed between identical calls: %+v vs %+v", got, first)
		}
	}
}

func TestMatch_NilValueDefaultsToZero(t *testing.T) {
	minValue := 0.5
	rules := domain.NewRuleSet(&minValue, nil, nil, nil)
	tx := &domain.PendingTransaction{Hash: "0x8"}

	verdict := Match(tx, rules)

	if verdict.Accepted {
		t.Fatal("expected rejection with nil value and min threshold")
	}
	if verdict.Reasons[0] != "value<0.5" {
		t.Errorf("expected 'value<0.5', got %v", verdict.Reasons)
	}
}
