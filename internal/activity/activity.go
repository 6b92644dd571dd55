// Package activity keeps an append-only CSV trail of changes made to the
// expense ledger.
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// Action names a kind of ledger change.
type Action string

const (
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionRemove Action = "remove"
	ActionImport Action = "import"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp time.Time
	Action    Action
	ExpenseID string
	Category  model.Category
	Amount    decimal.Decimal
	Details   string
}

// Header is the CSV header for activity.csv.
const Header = "timestamp,action,expense_id,category,amount,details"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "activity.csv"
	colTimestamp = 0
	colAction    = 1
	colExpenseID = 2
	colCategory  = 3
	colAmount    = 4
	colDetails   = 5
)

// ForExpense builds an entry describing a change to e.
func ForExpense(ts time.Time, action Action, e model.Expense, details string) Entry {
	return Entry{
		Timestamp: ts,
		Action:    action,
		ExpenseID: e.ID,
		Category:  e.Category,
		Amount:    e.Amount,
		Details:   details,
	}
}

// Path returns the activity log location under dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, logDir, logFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colAction] = string(e.Action)
	row[colExpenseID] = e.ExpenseID
	row[colCategory] = e.Category.String()
	row[colAmount] = e.Amount.String()
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var amount decimal.Decimal
	if s := record[colAmount]; s != "" {
		amount, err = decimal.NewFromString(s)
		if err != nil {
			return Entry{}, fmt.Errorf("parsing amount %q: %w", s, err)
		}
	}

	return Entry{
		Timestamp: ts,
		Action:    Action(record[colAction]),
		ExpenseID: record[colExpenseID],
		Category:  model.Category(record[colCategory]),
		Amount:    amount,
		Details:   record[colDetails],
	}, nil
}

// Append writes entries to <dataDir>/logs/activity.csv, creating the file and
// header if needed.
func Append(dataDir string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(dataDir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(dataDir)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing activity log: %w", err)
	}
	return f.Close()
}

// Read returns all entries from <dataDir>/logs/activity.csv, oldest first.
// A missing file yields no entries.
func Read(dataDir string) ([]Entry, error) {
	f, err := os.Open(Path(dataDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
