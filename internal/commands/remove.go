package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/activity"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/report"
)

func newRemoveCommand(a *app) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete an expense by id, id prefix or list position",
		Example: `  tally rm 3f2b9c1e
  tally rm --index 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byIndex := cmd.Flags().Changed("index")
			if byIndex == (len(args) == 1) {
				return errors.New("give either an expense id or --index")
			}
			if byIndex && index < 1 {
				return fmt.Errorf("%w: positions start at 1", ledger.ErrNotFound)
			}

			return a.withSession(cmd.Context(), func(s *session) error {
				var removed model.Expense
				var err error
				if byIndex {
					removed, err = s.store.RemoveAt(cmd.Context(), index-1)
				} else {
					removed, err = s.store.Resolve(args[0])
					if err != nil {
						return err
					}
					err = s.store.Remove(cmd.Context(), removed.ID)
				}
				if err != nil && !errors.Is(err, ledger.ErrPersistenceUnavailable) {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s %s\n", id.Short(removed.ID), report.FormatAmount(removed.Amount), removed.Category)
				if err == nil {
					a.record(cmd.ErrOrStderr(), activity.ForExpense(a.now(), activity.ActionRemove, removed, ""))
				}
				return settle(cmd.ErrOrStderr(), err)
			})
		},
	}

	cmd.Flags().IntVarP(&index, "index", "n", 0, "1-based position as shown by list")

	return cmd
}
