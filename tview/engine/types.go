// Package engine is the tabular view engine shared by every list screen:
// a filter stage, a sort stage and a page window stage. Every stage is a
// pure function of its inputs. Rows are treated as immutable and are never
// retained between calls.
package engine

import (
	"fmt"
	"strings"
)

// Row maps a column id to a primitive cell value: string, any integer or
// float kind, bool, time.Time, a fmt.Stringer, or nil. A missing key reads
// as nil.
type Row map[string]any

// Get returns the value stored under id, or nil when the row lacks it.
func (r Row) Get(id string) any {
	if r == nil {
		return nil
	}
	return r[id]
}

// DataType selects the comparator used when sorting a column.
type DataType int

const (
	// String compares with locale collation. It is the default.
	String DataType = iota
	// Number compares numerically.
	Number
	// Date compares by epoch milliseconds.
	Date
)

// String returns the lower-case name used in catalogs and query params.
func (dt DataType) String() string {
	switch dt {
	case String:
		return "string"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return fmt.Sprintf("unknown(%d)", int(dt))
	}
}

// ParseDataType converts a catalog type name. An empty name is String.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return String, nil
	case "number":
		return Number, nil
	case "date":
		return Date, nil
	default:
		return String, fmt.Errorf("%w: %q", ErrUnknownDataType, s)
	}
}

// Comparator orders two complete rows. It returns a negative number when a
// sorts before b, zero when they are equal, and a positive number otherwise.
type Comparator func(a, b Row) int

// ColumnSpec describes how one column renders and sorts.
type ColumnSpec struct {
	ID         string
	Label      string
	Sortable   bool
	DataType   DataType
	Comparator Comparator
}

// ValidateColumns reports empty or duplicated column ids.
func ValidateColumns(columns []ColumnSpec) error {
	seen := make(map[string]struct{}, len(columns))
	for i, col := range columns {
		if strings.TrimSpace(col.ID) == "" {
			return fmt.Errorf("%w: column %d", ErrEmptyColumnID, i)
		}
		if _, ok := seen[col.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, col.ID)
		}
		seen[col.ID] = struct{}{}
	}
	return nil
}

// FindColumn returns the spec with the given id.
func FindColumn(columns []ColumnSpec, id string) (ColumnSpec, bool) {
	for _, col := range columns {
		if col.ID == id {
			return col, true
		}
	}
	return ColumnSpec{}, false
}

// Direction is the sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts "asc" or "desc" in any case. Empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// SortState is the selected sort column and direction. Direction only
// matters when Key is set.
type SortState struct {
	Key       string
	Direction Direction
}

// IsSorted reports whether a sort column is selected.
func (s SortState) IsSorted() bool {
	return s.Key != ""
}

// Toggle returns the state after the user selects key: the same key flips
// direction, a new key starts ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key && key != "" {
		if s.Direction == Asc {
			return SortState{Key: key, Direction: Desc}
		}
		return SortState{Key: key, Direction: Asc}
	}
	return SortState{Key: key, Direction: Asc}
}

func (s SortState) String() string {
	if !s.IsSorted() {
		return "unsorted"
	}
	return s.Key + " " + s.Direction.String()
}

// FilterState holds the free-text search term.
type FilterState struct {
	Query string
}

// PageState is a zero-based page index and a positive page size.
type PageState struct {
	Index int
	Size  int
}
