// Package report aggregates expense snapshots.
//
// All functions are pure: they read the given slice, never modify it, and
// hold no state between calls.
package report

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// MonthKeyLayout formats a month key. Keys are zero-padded "YYYY-MM", so
// lexicographic order equals chronological order for years 1000-9999.
const MonthKeyLayout = "2006-01"

// MonthKey returns the "YYYY-MM" key for t in t's own location.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// Total returns the sum of all amounts, zero for an empty snapshot.
func Total(expenses []model.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// TotalByCategory returns the sum of amounts in category c.
func TotalByCategory(expenses []model.Expense, c model.Category) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		if e.Category == c {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

// TotalByMonth groups amounts by month key. Only months that have expenses
// appear.
func TotalByMonth(expenses []model.Expense) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		k := MonthKey(e.Date)
		sums[k] = sums[k].Add(e.Amount)
	}
	return sums
}

// TotalByMonthAndCategory groups amounts by month key, then category. Only
// (month, category) pairs that occur appear.
func TotalByMonthAndCategory(expenses []model.Expense) map[string]map[model.Category]decimal.Decimal {
	sums := make(map[string]map[model.Category]decimal.Decimal)
	for _, e := range expenses {
		k := MonthKey(e.Date)
		inner, ok := sums[k]
		if !ok {
			inner = make(map[model.Category]decimal.Decimal)
			sums[k] = inner
		}
		inner[e.Category] = inner[e.Category].Add(e.Amount)
	}
	return sums
}

// SortedMonths returns the keys of a month-keyed map in chronological order.
func SortedMonths[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// SortedCategories returns the keys of a category-keyed map alphabetically.
func SortedCategories[V any](m map[model.Category]V) []model.Category {
	return slices.Sorted(maps.Keys(m))
}
