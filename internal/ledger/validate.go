package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

var (
	hundred      = decimal.NewFromInt(100)
	errMissingID = errors.New("missing id")
)

// CategoryChecker tests whether a category is in the configured set.
type CategoryChecker interface {
	Exists(c model.Category) bool
}

// NetAmount applies an optional split percentage to a raw amount.
//
//	NetAmount(100, nil) -> 100
//	NetAmount(100, 50)  -> 50
//
// The raw amount and the result must both be positive, and the split must
// lie in [0,100]. A zero split therefore fails with ErrInvalidAmount.
func NetAmount(amount decimal.Decimal, splitPercent *decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, amount)
	}
	if splitPercent == nil {
		return amount, nil
	}
	if err := checkSplit(*splitPercent); err != nil {
		return decimal.Zero, err
	}
	net := amount.Mul(*splitPercent).Div(hundred)
	if !net.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s%% of %s leaves nothing to record", ErrInvalidAmount, splitPercent, amount)
	}
	return net, nil
}

func checkSplit(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s is outside 0..100", ErrInvalidSplitPercent, p)
	}
	return nil
}

func checkCategory(cats CategoryChecker, c model.Category) error {
	if !cats.Exists(c) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, c)
	}
	return nil
}

// validateRecord checks a stored or imported expense against the record invariants.
func validateRecord(e model.Expense, cats CategoryChecker) error {
	if e.ID == "" {
		return errMissingID
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, e.Amount)
	}
	return checkCategory(cats, e.Category)
}

// ParseAmount parses user input such as "12.50", "12,50" or "$12.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	norm, ok := decimalComma(s)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q looks digit-grouped, use a plain number", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return d, nil
}

// ParseSplit parses a split percentage such as "50" or "33.5%".
func ParseSplit(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	norm, ok := decimalComma(s)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q looks digit-grouped, use a plain number", ErrInvalidSplitPercent, s)
	}
	d, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidSplitPercent, s)
	}
	if err := checkSplit(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// decimalComma rewrites a decimal comma ("12,50") as a point. It reports
// false when the comma may be a thousands separator: more than one comma, a
// comma next to a point, or exactly three digits after the comma.
func decimalComma(s string) (string, bool) {
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return s, true
	}
	if strings.Count(s, ",") > 1 || strings.Contains(s, ".") || len(s)-i-1 == 3 {
		return "", false
	}
	return s[:i] + "." + s[i+1:], true
}
