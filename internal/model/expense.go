package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is one recorded monetary outflow.
type Expense struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"` // net of any split, always > 0
	Category Category        `json:"category"`
	Date     time.Time       `json:"date"`
}

// Equal reports whether two expenses carry the same id, amount, category and instant.
func (e Expense) Equal(o Expense) bool {
	return e.ID == o.ID &&
		e.Amount.Equal(o.Amount) &&
		e.Category == o.Category &&
		e.Date.Equal(o.Date)
}
