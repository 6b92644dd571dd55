package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/report"
)

const listDateFormat = "2006-01-02 15:04"

func newListCommand(a *app) *cobra.Command {
	var month, category string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List expenses in the order they were recorded",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month != "" {
				m, err := parseMonth(month)
				if err != nil {
					return err
				}
				month = m
			}

			return a.withSession(cmd.Context(), func(s *session) error {
				var only model.Category
				if category != "" {
					c, ok := s.cats.Lookup(category)
					if !ok {
						return fmt.Errorf("%w: %q", ledger.ErrInvalidCategory, category)
					}
					only = c
				}

				out := cmd.OutOrStdout()
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

				shown := 0
				total := decimal.Zero
				for i, e := range s.store.All() {
					if month != "" && report.MonthKey(e.Date) != month {
						continue
					}
					if only != "" && e.Category != only {
						continue
					}
					if shown == 0 {
						fmt.Fprintln(tw, "#\tID\tDATE\tAMOUNT\tCATEGORY")
					}
					// Positions are over the whole collection so they stay valid for rm --index.
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
						i+1, id.Short(e.ID), e.Date.Format(listDateFormat), report.FormatAmount(e.Amount), e.Category)
					shown++
					total = total.Add(e.Amount)
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				if shown == 0 {
					fmt.Fprintln(out, "No expenses recorded.")
					return nil
				}
				fmt.Fprintf(out, "\n%d expenses, %s total\n", shown, report.FormatAmount(total))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "only expenses in this month (YYYY-MM)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only expenses in this category")

	return cmd
}
