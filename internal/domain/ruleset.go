package domain

import (
	"sort"
	"strings"
)

// RuleSet holds the static acceptance criteria applied to every observed
// transaction. It is built once at startup and read-only afterwards; every
// matcher invocation receives it by reference.
type RuleSet struct {
	MinValue        *float64
	AllowSelectors  map[string]struct{}
	DenySelectors   map[string]struct{}
	WatchRecipients map[string]struct{}
}

// NewRuleSet canonicalizes all selectors and addresses to lowercase.
// A nil minValue means no value threshold is applied.
func NewRuleSet(minValue *float64, allow, deny, watch []string) *RuleSet {
	return &RuleSet{
		MinValue:        minValue,
		AllowSelectors:  toSet(allow),
		DenySelectors:   toSet(deny),
		WatchRecipients: toSet(watch),
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

// Verdict is the outcome of evaluating one transaction against a RuleSet.
// Reasons is empty exactly when Accepted is true.
type Verdict struct {
	Accepted bool     `json:"accepted"`
	Reasons  []string `json:"reasons,omitempty"`
}

// RuleSetView is the serializable form of a RuleSet used by the ops API.
type RuleSetView struct {
	MinValue        *float64 `json:"min_value,omitempty"`
	AllowSelectors  []string `json:"allow_selectors,omitempty"`
	DenySelectors   []string `json:"deny_selectors,omitempty"`
	WatchRecipients []string `json:"watch_recipients,omitempty"`
}

func (r *RuleSet) View() RuleSetView {
	return RuleSetView{
		MinValue:        r.MinValue,
		AllowSelectors:  toSorted(r.AllowSelectors),
		DenySelectors:   toSorted(r.DenySelectors),
		WatchRecipients: toSorted(r.WatchRecipients),
	}
}

func toSorted(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
