package indexing

import (
	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"

	roaring "github.com/RoaringBitmap/roaring"
)

// RowSet is a set of row positions inside one snapshot.
type RowSet struct {
	bm *roaring.Bitmap
}

func NewRowSet() *RowSet {
	return &RowSet{bm: roaring.New()}
}

// AllRows returns the set {0, ..., n-1}.
func AllRows(n int) *RowSet {
	s := NewRowSet()
	if n > 0 {
		s.bm.AddRange(0, uint64(n))
	}
	return s
}

func (s *RowSet) Add(pos int) {
	s.bm.Add(uint32(pos))
}

func (s *RowSet) Contains(pos int) bool {
	return s.bm.Contains(uint32(pos))
}

func (s *RowSet) Len() int {
	return int(s.bm.GetCardinality())
}

// Positions returns the members in ascending order.
func (s *RowSet) Positions() []int {
	out := make([]int, 0, s.Len())
	it := s.bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// And returns the intersection as a new set.
func (s *RowSet) And(o *RowSet) *RowSet {
	res := s.Clone()
	if o == nil {
		return NewRowSet()
	}
	res.bm.And(o.bm)
	return res
}

// Or returns the union as a new set.
func (s *RowSet) Or(o *RowSet) *RowSet {
	res := s.Clone()
	if o != nil {
		res.bm.Or(o.bm)
	}
	return res
}

func (s *RowSet) Clone() *RowSet {
	c := roaring.New()
	if s != nil && s.bm != nil {
		c.Or(s.bm) // copy
	}
	return &RowSet{bm: c}
}

// Select returns rows at the member positions, in position order.
// Positions past the end of rows are skipped.
func (s *RowSet) Select(rows []engine.Row) []engine.Row {
	out := make([]engine.Row, 0, s.Len())
	it := s.bm.Iterator()
	for it.HasNext() {
		pos := int(it.Next())
		if pos >= len(rows) {
			break
		}
		out = append(out, rows[pos])
	}
	return out
}

// MatchSet returns the positions of rows matching query. When candidates is
// non-nil only those positions are tested.
func MatchSet(rows []engine.Row, query string, candidates *RowSet) *RowSet {
	m := engine.NewMatcher(query)
	res := NewRowSet()
	if candidates == nil {
		for i, row := range rows {
			if m.Match(row) {
				res.Add(i)
			}
		}
		return res
	}
	it := candidates.bm.Iterator()
	for it.HasNext() {
		pos := int(it.Next())
		if pos >= len(rows) {
			break
		}
		if m.Match(rows[pos]) {
			res.Add(pos)
		}
	}
	return res
}
