package exchange

import (
	"github.com/lukehollenback/bourse/structs/intervalset"
)

//
// History is the persistent tier for range-queried facts such as trade history. Per key it tracks
// which spans have been fetched in full and accumulates every entity seen, in first-seen order.
// Entries are never evicted.
//
type History[K comparable, E comparable] struct {
	entries map[K]*historyEntry[E]
}

type historyEntry[E comparable] struct {
	covered intervalset.Set
	seen    map[E]struct{}
	items   []E
}

func NewHistory[K comparable, E comparable]() *History[K, E] {
	return &History[K, E]{
		entries: make(map[K]*historyEntry[E]),
	}
}

//
// Covers reports whether [start, end] lies entirely within one previously recorded span for key.
//
func (o *History[K, E]) Covers(key K, start int64, end int64) bool {
	e, ok := o.entries[key]

	return ok && e.covered.IncludesRange(start, end)
}

//
// Record marks [start, end] as fully fetched for key and adds items to its accumulated set.
//
func (o *History[K, E]) Record(key K, start int64, end int64, items []E) {
	e, ok := o.entries[key]
	if !ok {
		e = &historyEntry[E]{seen: make(map[E]struct{})}
		o.entries[key] = e
	}

	e.covered.Add(start, end)

	for _, item := range items {
		if _, dup := e.seen[item]; dup {
			continue
		}

		e.seen[item] = struct{}{}
		e.items = append(e.items, item)
	}
}

//
// Items returns every entity accumulated for key.
//
func (o *History[K, E]) Items(key K) []E {
	e, ok := o.entries[key]
	if !ok {
		return nil
	}

	return append([]E(nil), e.items...)
}

//
// Covered returns the spans recorded for key.
//
func (o *History[K, E]) Covered(key K) []intervalset.Interval {
	e, ok := o.entries[key]
	if !ok {
		return nil
	}

	return e.covered.Intervals()
}
