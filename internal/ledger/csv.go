package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// Header is the CSV header used by WriteCSV and expected by ReadCSV.
const Header = "id,date,category,amount"

const (
	numFields   = 4
	dateFormat  = time.RFC3339Nano
	colID       = 0
	colDate     = 1
	colCategory = 2
	colAmount   = 3
)

// WriteCSV writes expenses (including header) in collection order.
func WriteCSV(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range expenses {
		if err := cw.Write(MarshalExpense(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads expenses written by WriteCSV. The id and date columns may
// be blank.
func ReadCSV(r io.Reader) ([]model.Expense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading expenses CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}
	if !slices.Equal(records[0], strings.Split(Header, ",")) {
		return nil, fmt.Errorf("unexpected header %q, want %q", strings.Join(records[0], ","), Header)
	}

	var expenses []model.Expense
	for i, rec := range records[1:] {
		e, err := UnmarshalExpense(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// MarshalExpense converts an Expense to a CSV row.
func MarshalExpense(e model.Expense) []string {
	row := make([]string, numFields)
	row[colID] = e.ID
	row[colDate] = e.Date.Format(dateFormat)
	row[colCategory] = string(e.Category)
	row[colAmount] = e.Amount.String()
	return row
}

// UnmarshalExpense converts a CSV row to an Expense.
func UnmarshalExpense(record []string) (model.Expense, error) {
	if len(record) != numFields {
		return model.Expense{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var date time.Time
	if v := strings.TrimSpace(record[colDate]); v != "" {
		d, err := time.Parse(dateFormat, v)
		if err != nil {
			return model.Expense{}, fmt.Errorf("parsing date %q: %w", v, err)
		}
		date = d
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.Expense{
		ID:       strings.TrimSpace(record[colID]),
		Date:     date,
		Category: model.Category(record[colCategory]),
		Amount:   amount,
	}, nil
}
