// Package store holds the full, unfiltered row set behind one view.
package store

import (
	"sync"
	"time"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"

	"github.com/google/uuid"
)

// Snapshot is an immutable view of the rows at one point in time.
// Generation changes every time the rows are replaced.
type Snapshot struct {
	Generation uuid.UUID
	Rows       []engine.Row
	LoadedAt   time.Time
}

// Len returns the number of rows in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Rows)
}

// Store is safe for concurrent use. A data source may replace rows at any
// time while renders read the previous snapshot.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// New returns a store seeded with rows.
func New(rows []engine.Row) *Store {
	s := &Store{now: time.Now}
	s.Replace(rows)
	return s
}

// Replace swaps in a new row set wholesale and returns its generation.
// The slice is copied so later writes by the caller cannot leak in.
func (s *Store) Replace(rows []engine.Row) uuid.UUID {
	cp := make([]engine.Row, len(rows))
	copy(cp, rows)

	snap := Snapshot{
		Generation: uuid.New(),
		Rows:       cp,
		LoadedAt:   s.now(),
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return snap.Generation
}

// Snapshot returns the current rows. Callers must not modify them.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Generation returns the id of the current row set.
func (s *Store) Generation() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Generation
}

// Len returns the current row count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.Rows)
}
