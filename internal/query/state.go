package query

import (
	"fmt"
	"strings"
)

type SortOrder int

const (
	Newest SortOrder = iota
	Oldest
)

func (o SortOrder) String() string {
	if o == Oldest {
		return "oldest"
	}
	return "newest"
}

func (o SortOrder) Toggle() SortOrder {
	if o == Oldest {
		return Newest
	}
	return Oldest
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest":
		return Newest, nil
	case "oldest":
		return Oldest, nil
	default:
		return Newest, fmt.Errorf("unknown sort order %q (valid: newest, oldest)", s)
	}
}

// Query is the pipeline input. It carries the debounced term only.
type Query struct {
	Term       string
	Categories CategorySet
	Sort       SortOrder
}

// State holds the user-controlled query inputs. The raw term follows every
// keystroke; the debounced term is what filtering uses.
type State struct {
	rawTerm       string
	debouncedTerm string
	categories    CategorySet
	sort          SortOrder
}

func NewState(order SortOrder) State {
	return State{sort: order}
}

func (s *State) SetRawTerm(term string) { s.rawTerm = term }

// SettleTerm records the term once the debounce window has elapsed.
func (s *State) SettleTerm(term string) { s.debouncedTerm = term }

func (s *State) ToggleCategory(label string) bool { return s.categories.Toggle(label) }

func (s *State) SetSort(order SortOrder) { s.sort = order }

// Clear resets the search term and category selection. The sort order is
// kept.
func (s *State) Clear() {
	s.rawTerm = ""
	s.debouncedTerm = ""
	s.categories = CategorySet{}
}

func (s State) RawTerm() string            { return s.rawTerm }
func (s State) DebouncedTerm() string      { return s.debouncedTerm }
func (s State) Sort() SortOrder            { return s.sort }
func (s State) Selected(label string) bool { return s.categories.Contains(label) }
func (s State) SelectedCategories() []string {
	return s.categories.Sorted()
}

// Settled reports whether the debounced term has caught up with typing.
func (s State) Settled() bool { return s.rawTerm == s.debouncedTerm }

// Active reports whether any filter narrows the result.
func (s State) Active() bool {
	return s.rawTerm != "" || s.debouncedTerm != "" || s.categories.Len() > 0
}

// Query snapshots the inputs the pipeline is allowed to see.
func (s State) Query() Query {
	return Query{
		Term:       s.debouncedTerm,
		Categories: s.categories.Clone(),
		Sort:       s.sort,
	}
}
