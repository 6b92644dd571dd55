package ledger

import "errors"

var (
	// ErrInvalidAmount reports a non-positive or unparseable amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidCategory reports a category outside the configured set.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidSplitPercent reports a split percentage outside [0,100].
	ErrInvalidSplitPercent = errors.New("invalid split percent")
	// ErrNotFound reports that no expense matches the given id or position.
	ErrNotFound = errors.New("expense not found")
	// ErrAmbiguousID reports an id prefix matching more than one expense.
	ErrAmbiguousID = errors.New("ambiguous expense id")
	// ErrPersistenceUnavailable reports that the snapshot could not be written.
	// The in-memory change has been applied but may not survive a restart.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)
