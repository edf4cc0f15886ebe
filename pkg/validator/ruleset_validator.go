package validator

import (
	"errors"
	"fmt"
	"regexp"

	"mempool_watcher/internal/domain"
)

var (
	ErrInvalidMinValue = errors.New("invalid minimum value")
	ErrInvalidSelector = errors.New("invalid method selector")
	ErrInvalidAddress  = errors.New("invalid address")
)

// RuleSetValidator checks a loaded rule set before the watcher starts.
// Selectors must be canonical 4-byte identifiers; watch addresses only need
// the 0x prefix since comparison is plain lowercase string membership.
type RuleSetValidator struct {
	selectorRegex *regexp.Regexp
	addressRegex  *regexp.Regexp
}

func NewRuleSetValidator() *RuleSetValidator {
	return &RuleSetValidator{
		selectorRegex: regexp.MustCompile(`^0x[0-9a-f]{8}$`),
		addressRegex:  regexp.MustCompile(`^0x[0-9a-f]+$`),
	}
}

func (v *RuleSetValidator) Validate(rules *domain.RuleSet) error {
	var errs []error

	if rules.MinValue != nil && *rules.MinValue < 0 {
		errs = append(errs, fmt.Errorf("%w: %f", ErrInvalidMinValue, *rules.MinValue))
	}

	for sel := range rules.AllowSelectors {
		if !v.selectorRegex.MatchString(sel) {
			errs = append(errs, fmt.Errorf("%w: allow list entry %q", ErrInvalidSelector, sel))
		}
	}
	for sel := range rules.DenySelectors {
		if !v.selectorRegex.MatchString(sel) {
			errs = append(errs, fmt.Errorf("%w: deny list entry %q", ErrInvalidSelector, sel))
		}
	}

	for addr := range rules.WatchRecipients {
		if !v.addressRegex.MatchString(addr) {
			errs = append(errs, fmt.Errorf("%w: watch list entry %q", ErrInvalidAddress, addr))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("rule set validation errors: %v", errs)
	}

	return nil
}
