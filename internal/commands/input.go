package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/categories"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/report"
)

// defaultSplit is the percentage used when --split is given without a value.
const defaultSplit = "50"

// resolveCategory maps user input to a configured category, ignoring case.
// Empty input selects the first configured category. Unknown input is passed
// through so the ledger rejects it.
func resolveCategory(cats *categories.Set, input string) model.Category {
	input = strings.TrimSpace(input)
	if input == "" {
		return cats.All()[0]
	}
	if c, ok := cats.Lookup(input); ok {
		return c
	}
	return model.Category(input)
}

func addSplitFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "split", "", "record only this percentage of the amount (--split=30); --split alone means "+defaultSplit)
	cmd.Flags().Lookup("split").NoOptDefVal = defaultSplit
}

// splitFromFlag returns the parsed --split value, or nil when the flag was not given.
func splitFromFlag(cmd *cobra.Command, raw string) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed("split") {
		return nil, nil
	}
	p, err := ledger.ParseSplit(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// parseMonth validates a YYYY-MM month key.
func parseMonth(s string) (string, error) {
	t, err := time.Parse(report.MonthKeyLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return report.MonthKey(t), nil
}
