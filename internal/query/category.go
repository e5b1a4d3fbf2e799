package query

import (
	"sort"

	"github.com/matheuskafuri/blogreader/internal/article"
)

// Categories returns every distinct category label in articles, sorted.
func Categories(articles []article.Article) []string {
	seen := make(map[string]struct{})
	for _, a := range articles {
		for _, c := range a.Category {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// CategorySet is a set of category labels. The zero value is an empty set.
type CategorySet struct {
	m map[string]struct{}
}

func NewCategorySet(labels ...string) CategorySet {
	var s CategorySet
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

func (s *CategorySet) Add(label string) {
	if s.m == nil {
		s.m = make(map[string]struct{})
	}
	s.m[label] = struct{}{}
}

func (s *CategorySet) Remove(label string) {
	delete(s.m, label)
}

func (s CategorySet) Contains(label string) bool {
	_, ok := s.m[label]
	return ok
}

// Toggle removes label if present, adds it otherwise. It returns whether the
// label is selected afterwards.
func (s *CategorySet) Toggle(label string) bool {
	if s.Contains(label) {
		s.Remove(label)
		return false
	}
	s.Add(label)
	return true
}

func (s CategorySet) Len() int { return len(s.m) }

func (s CategorySet) Sorted() []string {
	out := make([]string, 0, len(s.m))
	for l := range s.m {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func (s CategorySet) Clone() CategorySet {
	return NewCategorySet(s.Sorted()...)
}

// matchesAny reports whether any label is in the set.
func (s CategorySet) matchesAny(labels []string) bool {
	for _, l := range labels {
		if s.Contains(l) {
			return true
		}
	}
	return false
}
