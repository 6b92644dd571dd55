package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// CategoryTotal is the spend for one category.
type CategoryTotal struct {
	Category model.Category
	Total    decimal.Decimal
}

// MonthTotal is the spend for one month with its per-category breakdown.
type MonthTotal struct {
	Month      string
	Total      decimal.Decimal
	Categories []CategoryTotal // alphabetical, only categories with spend
}

// Summary bundles every aggregate view of a snapshot in display order.
type Summary struct {
	Count      int
	Total      decimal.Decimal
	ByCategory []CategoryTotal // configured order, zero totals included
	ByMonth    []MonthTotal    // chronological
}

// Build computes a Summary. categories gives the display order of the
// by-category view; every listed category appears even without spend.
func Build(expenses []model.Expense, categories []model.Category) Summary {
	s := Summary{
		Count:      len(expenses),
		Total:      Total(expenses),
		ByCategory: make([]CategoryTotal, 0, len(categories)),
	}
	for _, c := range categories {
		s.ByCategory = append(s.ByCategory, CategoryTotal{Category: c, Total: TotalByCategory(expenses, c)})
	}

	byMonth := TotalByMonth(expenses)
	byMonthCat := TotalByMonthAndCategory(expenses)
	for _, m := range SortedMonths(byMonth) {
		mt := MonthTotal{Month: m, Total: byMonth[m]}
		for _, c := range SortedCategories(byMonthCat[m]) {
			mt.Categories = append(mt.Categories, CategoryTotal{Category: c, Total: byMonthCat[m][c]})
		}
		s.ByMonth = append(s.ByMonth, mt)
	}
	return s
}

// InMonth returns the expenses whose month key equals month, in input order.
func InMonth(expenses []model.Expense, month string) []model.Expense {
	var out []model.Expense
	for _, e := range expenses {
		if MonthKey(e.Date) == month {
			out = append(out, e)
		}
	}
	return out
}

// FormatAmount renders an amount as "$12.34".
func FormatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Write renders s as plain text.
func Write(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Total Expenses\t%s\n", FormatAmount(s.Total))
	fmt.Fprintf(tw, "Entries\t%d\n", s.Count)

	fmt.Fprintln(tw, "\nExpenses by Category")
	for _, ct := range s.ByCategory {
		fmt.Fprintf(tw, "  %s\t%s\n", ct.Category, FormatAmount(ct.Total))
	}

	fmt.Fprintln(tw, "\nExpenses by Month")
	if len(s.ByMonth) == 0 {
		fmt.Fprintln(tw, "  (none)")
	}
	for _, mt := range s.ByMonth {
		fmt.Fprintf(tw, "  %s\t%s\n", mt.Month, FormatAmount(mt.Total))
	}

	fmt.Fprintln(tw, "\nExpenses by Month & Category")
	if len(s.ByMonth) == 0 {
		fmt.Fprintln(tw, "  (none)")
	}
	for _, mt := range s.ByMonth {
		fmt.Fprintf(tw, "  %s\t\n", mt.Month)
		for _, ct := range mt.Categories {
			fmt.Fprintf(tw, "    %s\t%s\n", ct.Category, FormatAmount(ct.Total))
		}
	}

	return tw.Flush()
}
