package indexing

import (
	"sync"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
	"github.com/ZanzyTHEbar/retail-tableview/tview/store"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// MemoKey identifies one filter+sort result.
type MemoKey struct {
	Generation uuid.UUID
	Query      string // folded
	Sort       engine.SortState
	Locale     string
}

// MemoStats tracks memo effectiveness.
type MemoStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// Memo caches filter+sort output for a single view. The view's columns are
// fixed, so they are not part of the key. Results are identical to running
// engine.FilterRows and engine.SortRows directly.
type Memo struct {
	mu      sync.Mutex
	entries map[MemoKey][]engine.Row
	order   []MemoKey
	max     int
	prefix  *PrefixCache
	stats   MemoStats
}

// NewMemo returns a memo bounded to maxEntries results (default 64).
func NewMemo(maxEntries int) *Memo {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	return &Memo{
		entries: make(map[MemoKey][]engine.Row),
		max:     maxEntries,
		prefix:  NewPrefixCache(maxEntries * 4),
	}
}

// Filter returns the rows of snap matching query, narrowing the scan with
// the longest cached prefix of the query.
func (m *Memo) Filter(snap store.Snapshot, query string) []engine.Row {
	if query == "" {
		return snap.Rows
	}
	folded := engine.FoldQuery(query)
	if folded == "" {
		return snap.Rows
	}
	candidates, _, _ := m.prefix.Lookup(snap.Generation, folded)
	set := MatchSet(snap.Rows, query, candidates)
	m.prefix.Store(snap.Generation, folded, set)
	return set.Select(snap.Rows)
}

// FilterSort returns the filtered and sorted rows for snap.
func (m *Memo) FilterSort(snap store.Snapshot, columns []engine.ColumnSpec, query string, sort engine.SortState, tag language.Tag) []engine.Row {
	key := MemoKey{
		Generation: snap.Generation,
		Query:      engine.FoldQuery(query),
		Sort:       sort,
		Locale:     tag.String(),
	}

	m.mu.Lock()
	if rows, ok := m.entries[key]; ok {
		m.stats.Hits++
		m.mu.Unlock()
		return rows
	}
	m.stats.Misses++
	m.mu.Unlock()

	rows := engine.SortRows(m.Filter(snap, query), columns, sort, engine.WithLocale(tag))

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		if len(m.order) >= m.max {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.entries, oldest)
			m.stats.Evictions++
		}
		m.order = append(m.order, key)
	}
	m.entries[key] = rows
	return rows
}

// Stats returns a copy of the counters.
func (m *Memo) Stats() MemoStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// PrefixStats exposes the prefix cache counters.
func (m *Memo) PrefixStats() PrefixCacheStats {
	return m.prefix.Stats()
}
