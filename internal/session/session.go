// Package session owns the state of one fetch cycle: the buckets, the
// operator's selection and category choices, and the reconciliation of AI
// recommendations into that state. A session is created when a fetch
// completes and discarded on reset or on the next fetch; nothing here is
// shared process-wide.
package session

import (
	"metrowatch/internal/article"
)

// ItemKey identifies one article within a cycle by (keyword, position).
// The key is stable only for the cycle that produced it.
type ItemKey struct {
	Keyword string
	Index   int
}

// Entry is the selection state of one article. Explicit marks entries the
// operator toggled or categorized directly; recommendation replay never
// touches explicit entries.
type Entry struct {
	Selected bool
	Category string
	Explicit bool
}

// Session carries all per-cycle state.
type Session struct {
	Buckets     *article.Buckets
	Recommended []string

	state map[ItemKey]Entry
}

// New starts a cycle around a freshly fetched bucket set. Any state from a
// previous cycle is gone by construction.
func New(buckets *article.Buckets) *Session {
	if buckets == nil {
		buckets = article.NewBuckets()
	}
	return &Session{
		Buckets: buckets,
		state:   make(map[ItemKey]Entry),
	}
}

// Item resolves a key to its article.
func (s *Session) Item(key ItemKey) (article.Article, bool) {
	items := s.Buckets.Get(key.Keyword)
	if key.Index < 0 || key.Index >= len(items) {
		return article.Article{}, false
	}
	return items[key.Index], true
}

// Entry returns the state for a key; absent keys read as unselected.
func (s *Session) Entry(key ItemKey) Entry {
	return s.state[key]
}

// Selected reports whether the item is currently checked.
func (s *Session) Selected(key ItemKey) bool {
	return s.state[key].Selected
}

// Toggle flips the checkbox for an item and marks the entry explicit, so
// later recommendation replays cannot override the operator's choice.
func (s *Session) Toggle(key ItemKey) {
	e := s.state[key]
	e.Selected = !e.Selected
	e.Explicit = true
	s.state[key] = e
}

// SetCategory assigns a category and marks the entry explicit. It does not
// change the checkbox.
func (s *Session) SetCategory(key ItemKey, category string) {
	e := s.state[key]
	e.Category = category
	e.Explicit = true
	s.state[key] = e
}

// ApplyRecommendations merges a recommendation set into the selection:
// every bucket article whose title is recommended becomes selected, but
// only where no state entry exists yet. Existing entries — explicit or
// not — are left untouched, so invoking the engine repeatedly in one cycle
// merges with, rather than replaces, manual toggles made in between.
func (s *Session) ApplyRecommendations(titles []string) {
	s.Recommended = titles

	recommended := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		recommended[t] = struct{}{}
	}

	for _, kw := range s.Buckets.Keywords {
		for i, a := range s.Buckets.Get(kw) {
			if _, ok := recommended[a.Title]; !ok {
				continue
			}
			key := ItemKey{Keyword: kw, Index: i}
			if _, exists := s.state[key]; exists {
				continue
			}
			s.state[key] = Entry{Selected: true}
		}
	}
}

// SelectedArticles returns the checked articles in keyword order, each
// carrying its chosen category (empty when the operator never set one).
func (s *Session) SelectedArticles() []article.Article {
	var out []article.Article
	for _, kw := range s.Buckets.Keywords {
		for i, a := range s.Buckets.Get(kw) {
			key := ItemKey{Keyword: kw, Index: i}
			e := s.state[key]
			if !e.Selected {
				continue
			}
			a.Category = e.Category
			out = append(out, a)
		}
	}
	return out
}

// SelectedCount counts checked items.
func (s *Session) SelectedCount() int {
	n := 0
	for _, e := range s.state {
		if e.Selected {
			n++
		}
	}
	return n
}

// Keys lists every item key in keyword order, for cursor-based interfaces.
func (s *Session) Keys() []ItemKey {
	var keys []ItemKey
	for _, kw := range s.Buckets.Keywords {
		for i := range s.Buckets.Get(kw) {
			keys = append(keys, ItemKey{Keyword: kw, Index: i})
		}
	}
	return keys
}
