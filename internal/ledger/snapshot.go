package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/tallyhq/tally/internal/model"
)

// SnapshotKey is the kv key holding the serialized expense collection.
const SnapshotKey = "expenses"

// EncodeSnapshot serializes expenses as a JSON array in collection order.
func EncodeSnapshot(expenses []model.Expense) ([]byte, error) {
	if expenses == nil {
		expenses = []model.Expense{}
	}
	data, err := json.Marshal(expenses)
	if err != nil {
		return nil, fmt.Errorf("encoding expenses: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a payload written by EncodeSnapshot. Amounts may be
// JSON strings or numbers.
func DecodeSnapshot(data []byte) ([]model.Expense, error) {
	var expenses []model.Expense
	if err := json.Unmarshal(data, &expenses); err != nil {
		return nil, fmt.Errorf("decoding expenses: %w", err)
	}
	return expenses, nil
}
