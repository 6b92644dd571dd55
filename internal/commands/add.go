package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/activity"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/report"
)

func newAddCommand(a *app) *cobra.Command {
	var category, split string

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an expense",
		Example: `  tally add 42.50 --category food
  tally add 1200 -c "Housing & Utilities" --split`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := ledger.ParseAmount(args[0])
			if err != nil {
				return err
			}
			splitPct, err := splitFromFlag(cmd, split)
			if err != nil {
				return err
			}

			return a.withSession(cmd.Context(), func(s *session) error {
				e, err := s.store.Add(cmd.Context(), ledger.AddParams{
					Amount:       amount,
					Category:     resolveCategory(s.cats, category),
					SplitPercent: splitPct,
				})
				if err != nil && !errors.Is(err, ledger.ErrPersistenceUnavailable) {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s\n", id.Short(e.ID), report.FormatAmount(e.Amount), e.Category)
				if err == nil {
					details := ""
					if splitPct != nil {
						details = fmt.Sprintf("split %s%% of %s", splitPct, report.FormatAmount(amount))
					}
					a.record(cmd.ErrOrStderr(), activity.ForExpense(a.now(), activity.ActionAdd, e, details))
				}
				return settle(cmd.ErrOrStderr(), err)
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category, case-insensitive (default: first configured category)")
	addSplitFlag(cmd, &split)

	return cmd
}
