// Package ledger owns the authoritative, ordered collection of expenses and
// keeps it synchronized with a kv.Store.
//
// Every mutating call validates its input, applies the change in memory and
// writes the full snapshot before returning. Validation failures never touch
// the collection or storage. A failed write is reported as
// ErrPersistenceUnavailable; the change stays applied in memory.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/kv"
	"github.com/tallyhq/tally/internal/model"
)

// Store is the expense collection. It is safe for concurrent use: mutations
// are serialized and reads may run in parallel with each other.
type Store struct {
	mu       sync.RWMutex
	kv       kv.Store
	cats     CategoryChecker
	expenses []model.Expense
	held     []model.Expense // persisted records whose category is not configured
	now      func() time.Time
	newID    id.Generator
	logger   *slog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock sets the time source used to stamp new expenses.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the source of new expense IDs.
func WithIDGenerator(g id.Generator) Option {
	return func(s *Store) { s.newID = g }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open creates a Store over backend and loads the persisted snapshot.
//
// Loading is lenient: a missing, unreadable or undecodable snapshot yields an
// empty collection, and individual records that break the record invariants
// are dropped. Both cases are logged at WARN. Records whose only fault is a
// category missing from cats are hidden rather than dropped; they are written
// back on every persist and reappear once the category is configured again.
func Open(ctx context.Context, backend kv.Store, cats CategoryChecker, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("ledger: nil kv store")
	}
	if cats == nil {
		return nil, errors.New("ledger: nil category set")
	}
	s := &Store{
		kv:     backend,
		cats:   cats,
		now:    time.Now,
		newID:  id.New,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "ledger")

	s.load(ctx)
	return s, nil
}

func (s *Store) load(ctx context.Context) {
	data, found, err := s.kv.Get(ctx, SnapshotKey)
	if err != nil {
		s.logger.WarnContext(ctx, "persisted expenses unavailable, starting empty", "error", err)
		return
	}
	if !found {
		return
	}

	records, err := DecodeSnapshot(data)
	if err != nil {
		s.logger.WarnContext(ctx, "persisted expenses unreadable, starting empty", "error", err, "bytes", len(data))
		return
	}

	seen := make(map[string]bool, len(records))
	kept := make([]model.Expense, 0, len(records))
	var held []model.Expense
	for i, e := range records {
		err := validateRecord(e, s.cats)
		if err != nil && !errors.Is(err, ErrInvalidCategory) {
			s.logger.WarnContext(ctx, "dropping invalid persisted expense", "index", i, "id", e.ID, "error", err)
			continue
		}
		if seen[e.ID] {
			s.logger.WarnContext(ctx, "dropping duplicate persisted expense", "index", i, "id", e.ID)
			continue
		}
		seen[e.ID] = true
		if err != nil {
			s.logger.WarnContext(ctx, "hiding expense with unconfigured category", "index", i, "id", e.ID, "category", e.Category)
			held = append(held, e)
			continue
		}
		kept = append(kept, e)
	}
	s.expenses = kept
	s.held = held
	s.logger.DebugContext(ctx, "expenses loaded", "count", len(kept), "hidden", len(held))
}

// persist writes the full collection. Callers must hold the write lock.
func (s *Store) persist(ctx context.Context) error {
	data, err := EncodeSnapshot(append(slices.Clone(s.expenses), s.held...))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	if err := s.kv.Set(ctx, SnapshotKey, data); err != nil {
		s.logger.ErrorContext(ctx, "writing expenses failed", "error", err, "count", len(s.expenses))
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	s.logger.DebugContext(ctx, "expenses persisted", "count", len(s.expenses), "bytes", len(data))
	return nil
}

// AddParams holds the inputs for a new expense.
type AddParams struct {
	Amount       decimal.Decimal
	Category     model.Category
	SplitPercent *decimal.Decimal // nil means no split
}

// Add records a new expense stamped with the current time and returns it.
// The stored amount is Amount, or Amount*SplitPercent/100 when a split is given.
//
// On ErrPersistenceUnavailable the returned expense is valid and present in
// the collection.
func (s *Store) Add(ctx context.Context, p AddParams) (model.Expense, error) {
	amount, err := NetAmount(p.Amount, p.SplitPercent)
	if err != nil {
		return model.Expense{}, err
	}
	if err := checkCategory(s.cats, p.Category); err != nil {
		return model.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := model.Expense{
		ID:       s.freshID(nil),
		Amount:   amount,
		Category: p.Category,
		Date:     s.now(),
	}
	s.expenses = append(s.expenses, e)
	return e, s.persist(ctx)
}

// EditParams holds field updates for Edit. Nil fields are left unchanged.
type EditParams struct {
	Amount       *decimal.Decimal
	Category     *model.Category
	SplitPercent *decimal.Decimal
}

// Edit updates the expense with the given id and returns the new record.
//
// A supplied Amount is the raw amount; SplitPercent, when given, is applied
// to it. The stored amount is already net of any earlier split, so a
// SplitPercent without an Amount fails with ErrInvalidAmount. ID and date are
// kept.
func (s *Store) Edit(ctx context.Context, expenseID string, p EditParams) (model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(expenseID)
	if i < 0 {
		return model.Expense{}, fmt.Errorf("%w: %s", ErrNotFound, expenseID)
	}
	updated := s.expenses[i]

	if p.SplitPercent != nil && p.Amount == nil {
		return model.Expense{}, fmt.Errorf("%w: a split needs the raw amount it applies to", ErrInvalidAmount)
	}
	if p.Amount != nil {
		amount, err := NetAmount(*p.Amount, p.SplitPercent)
		if err != nil {
			return model.Expense{}, err
		}
		updated.Amount = amount
	}
	if p.Category != nil {
		if err := checkCategory(s.cats, *p.Category); err != nil {
			return model.Expense{}, err
		}
		updated.Category = *p.Category
	}

	s.expenses[i] = updated
	return updated, s.persist(ctx)
}

// Remove deletes the expense with the given id.
func (s *Store) Remove(ctx context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(expenseID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, expenseID)
	}
	s.expenses = slices.Delete(s.expenses, i, i+1)
	return s.persist(ctx)
}

// RemoveAt deletes the expense at a 0-based position in collection order and
// returns it.
func (s *Store) RemoveAt(ctx context.Context, index int) (model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.expenses) {
		return model.Expense{}, fmt.Errorf("%w: no expense at position %d", ErrNotFound, index)
	}
	removed := s.expenses[index]
	s.expenses = slices.Delete(s.expenses, index, index+1)
	return removed, s.persist(ctx)
}

// Import appends records in order and persists once. Records are validated
// as a batch; if any is invalid nothing is imported. Records with an empty
// or already-used id get a fresh one, and a zero date becomes the current time.
func (s *Store) Import(ctx context.Context, records []model.Expense) ([]model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[string]bool, len(s.expenses)+len(s.held)+len(records))
	for _, e := range s.expenses {
		taken[e.ID] = true
	}
	for _, e := range s.held {
		taken[e.ID] = true
	}

	added := make([]model.Expense, 0, len(records))
	for i, e := range records {
		if !e.Amount.IsPositive() {
			return nil, fmt.Errorf("record %d: %w: %s must be greater than zero", i+1, ErrInvalidAmount, e.Amount)
		}
		if err := checkCategory(s.cats, e.Category); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if e.ID == "" || taken[e.ID] {
			e.ID = s.freshID(taken)
		}
		if e.Date.IsZero() {
			e.Date = s.now()
		}
		taken[e.ID] = true
		added = append(added, e)
	}

	if len(added) == 0 {
		return nil, nil
	}
	s.expenses = append(s.expenses, added...)
	return added, s.persist(ctx)
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []model.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.expenses)
}

// Len returns the number of expenses.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expenses)
}

// Get returns the expense with the given id.
func (s *Store) Get(expenseID string) (model.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(expenseID)
	if i < 0 {
		return model.Expense{}, false
	}
	return s.expenses[i], true
}

// Resolve finds an expense by full id or by a unique id prefix.
func (s *Store) Resolve(ref string) (model.Expense, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return model.Expense{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(ref); i >= 0 {
		return s.expenses[i], nil
	}

	var matches []model.Expense
	for _, e := range s.expenses {
		if strings.HasPrefix(strings.ToLower(e.ID), ref) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return model.Expense{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Expense{}, fmt.Errorf("%w: %q matches %d expenses", ErrAmbiguousID, ref, len(matches))
	}
}

func (s *Store) indexOf(expenseID string) int {
	return slices.IndexFunc(s.expenses, func(e model.Expense) bool { return e.ID == expenseID })
}

// freshID returns a generated id not present in the collection, the hidden
// records or extra.
func (s *Store) freshID(extra map[string]bool) string {
	for {
		candidate := s.newID()
		if !extra[candidate] && s.indexOf(candidate) < 0 && !slices.ContainsFunc(s.held, func(e model.Expense) bool { return e.ID == candidate }) {
			return candidate
		}
	}
}
