package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/activity"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/ledger"
)

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all expenses as CSV to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(s *session) error {
				expenses := s.store.All()
				if len(args) == 0 || args[0] == "-" {
					return ledger.WriteCSV(cmd.OutOrStdout(), expenses)
				}

				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				if err := ledger.WriteCSV(f, expenses); err != nil {
					_ = f.Close()
					return fmt.Errorf("writing export: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("closing export file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d expenses to %s\n", len(expenses), args[0])
				return nil
			})
		},
	}
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Append expenses from a CSV file written by export (- for stdin)",
		Long: `Append expenses from a CSV file with the header id,date,category,amount.

Every row is validated before anything is stored; one bad row rejects the
whole file. Rows with a blank id or an id already in use get a new id, and
rows with a blank date are stamped with the current time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening import file: %w", err)
				}
				defer f.Close()
				r = f
			}

			records, err := ledger.ReadCSV(r)
			if err != nil {
				return err
			}
			for i := range records {
				if canonical, err := id.Parse(records[i].ID); err == nil {
					records[i].ID = canonical
				}
			}

			return a.withSession(cmd.Context(), func(s *session) error {
				added, err := s.store.Import(cmd.Context(), records)
				if err != nil && !errors.Is(err, ledger.ErrPersistenceUnavailable) {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d expenses\n", len(added))
				if err == nil {
					now := a.now()
					entries := make([]activity.Entry, 0, len(added))
					for _, e := range added {
						entries = append(entries, activity.ForExpense(now, activity.ActionImport, e, "from "+args[0]))
					}
					a.record(cmd.ErrOrStderr(), entries...)
				}
				return settle(cmd.ErrOrStderr(), err)
			})
		},
	}
}
