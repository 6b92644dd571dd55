package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/report"
)

func newReportCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show totals overall, by category, by month and by month and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month != "" {
				m, err := parseMonth(month)
				if err != nil {
					return err
				}
				month = m
			}

			return a.withSession(cmd.Context(), func(s *session) error {
				expenses := s.store.All()
				if month != "" {
					expenses = report.InMonth(expenses, month)
					fmt.Fprintf(cmd.OutOrStdout(), "Report for %s\n\n", month)
				}
				return report.Write(cmd.OutOrStdout(), report.Build(expenses, s.cats.All()))
			})
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "restrict the report to one month (YYYY-MM)")

	return cmd
}
