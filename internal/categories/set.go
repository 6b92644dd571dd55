package categories

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

// ErrEmpty is returned when a category set would have no members.
var ErrEmpty = errors.New("category set is empty")

// Set is the fixed, ordered enumeration of valid categories.
type Set struct {
	ordered []model.Category
	byLabel map[model.Category]struct{}
	byFold  map[string]model.Category
}

// New builds a Set from labels, preserving order. Labels are trimmed;
// blank and duplicate labels are rejected.
func New(labels []string) (*Set, error) {
	if len(labels) == 0 {
		return nil, ErrEmpty
	}
	s := &Set{
		ordered: make([]model.Category, 0, len(labels)),
		byLabel: make(map[model.Category]struct{}, len(labels)),
		byFold:  make(map[string]model.Category, len(labels)),
	}
	for i, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			return nil, fmt.Errorf("category %d: blank label", i+1)
		}
		c := model.Category(l)
		if _, dup := s.byLabel[c]; dup {
			return nil, fmt.Errorf("category %q: duplicate label", l)
		}
		s.ordered = append(s.ordered, c)
		s.byLabel[c] = struct{}{}
		s.byFold[strings.ToLower(l)] = c
	}
	return s, nil
}

// MustNew is like New but panics on error. Intended for static label lists.
func MustNew(labels []string) *Set {
	s, err := New(labels)
	if err != nil {
		panic(err)
	}
	return s
}

// All returns the categories in configured order.
func (s *Set) All() []model.Category {
	return slices.Clone(s.ordered)
}

// Sorted returns the categories in alphabetical order.
func (s *Set) Sorted() []model.Category {
	out := slices.Clone(s.ordered)
	slices.Sort(out)
	return out
}

// Exists reports whether c is a member (exact match).
func (s *Set) Exists(c model.Category) bool {
	_, ok := s.byLabel[c]
	return ok
}

// Lookup resolves user input to a member, ignoring case and surrounding space.
func (s *Set) Lookup(input string) (model.Category, bool) {
	c, ok := s.byFold[strings.ToLower(strings.TrimSpace(input))]
	return c, ok
}

// Len returns the number of categories.
func (s *Set) Len() int {
	return len(s.ordered)
}

// Strings returns the labels in configured order.
func (s *Set) Strings() []string {
	out := make([]string, len(s.ordered))
	for i, c := range s.ordered {
		out[i] = string(c)
	}
	return out
}
