package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/report"
)

func newCategoriesCommand(a *app) *cobra.Command {
	var totals bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the configured categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !totals {
				cats, err := a.categories()
				if err != nil {
					return err
				}
				for _, c := range cats.All() {
					fmt.Fprintln(out, c)
				}
				return nil
			}

			return a.withSession(cmd.Context(), func(s *session) error {
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, ct := range report.Build(s.store.All(), s.cats.All()).ByCategory {
					fmt.Fprintf(tw, "%s\t%s\n", ct.Category, report.FormatAmount(ct.Total))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&totals, "totals", false, "show the total spent in each category")

	return cmd
}
