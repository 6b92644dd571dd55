package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/activity"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/report"
)

func newEditCommand(a *app) *cobra.Command {
	var amountArg, category, split string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the amount or category of an expense",
		Long: `Change the amount or category of an expense, addressed by id or unique id prefix.

--split applies to the raw --amount and needs it: the stored amount is already
net of the original split, so a split alone is rejected. The id and date never
change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("amount") && !flags.Changed("category") && !flags.Changed("split") {
				return errors.New("nothing to change: give --amount, --category or --split")
			}

			var p ledger.EditParams
			var changes []string
			if flags.Changed("amount") {
				amount, err := ledger.ParseAmount(amountArg)
				if err != nil {
					return err
				}
				p.Amount = &amount
				changes = append(changes, "amount "+report.FormatAmount(amount))
			}
			splitPct, err := splitFromFlag(cmd, split)
			if err != nil {
				return err
			}
			if splitPct != nil {
				p.SplitPercent = splitPct
				changes = append(changes, fmt.Sprintf("split %s%%", splitPct))
			}

			return a.withSession(cmd.Context(), func(s *session) error {
				target, err := s.store.Resolve(args[0])
				if err != nil {
					return err
				}
				if flags.Changed("category") {
					c := resolveCategory(s.cats, category)
					p.Category = &c
					changes = append(changes, "category "+c.String())
				}

				e, err := s.store.Edit(cmd.Context(), target.ID, p)
				if err != nil && !errors.Is(err, ledger.ErrPersistenceUnavailable) {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s %s\n", id.Short(e.ID), report.FormatAmount(e.Amount), e.Category)
				if err == nil {
					a.record(cmd.ErrOrStderr(), activity.ForExpense(a.now(), activity.ActionEdit, e, strings.Join(changes, "; ")))
				}
				return settle(cmd.ErrOrStderr(), err)
			})
		},
	}

	cmd.Flags().StringVarP(&amountArg, "amount", "a", "", "new amount before any split")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category, case-insensitive")
	addSplitFlag(cmd, &split)

	return cmd
}
