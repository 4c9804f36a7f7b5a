package engine

import (
	"slices"

	"golang.org/x/text/language"
)

type sortConfig struct {
	locale language.Tag
}

// SortOption customises SortRows.
type SortOption func(*sortConfig)

// WithLocale sets the collation locale for string columns. Default: und.
func WithLocale(tag language.Tag) SortOption {
	return func(c *sortConfig) { c.locale = tag }
}

// decorated pairs a row with its input position for the stable tie-break.
type decorated struct {
	row   Row
	index int
}

// SortRows orders rows by the column named in state. An unsorted state
// returns rows itself. Otherwise a new slice is returned and the input is
// left untouched. Rows that compare equal keep their input order.
func SortRows(rows []Row, columns []ColumnSpec, state SortState, opts ...SortOption) []Row {
	if !state.IsSorted() {
		return rows
	}
	cfg := sortConfig{locale: language.Und}
	for _, opt := range opts {
		opt(&cfg)
	}

	col, ok := FindColumn(columns, state.Key)
	if !ok {
		// undeclared keys still sort, as plain strings
		col = ColumnSpec{ID: state.Key, DataType: String}
	}
	cmp := comparatorFor(col, cfg.locale)
	desc := state.Direction == Desc

	items := make([]decorated, len(rows))
	for i, row := range rows {
		items[i] = decorated{row: row, index: i}
	}
	slices.SortFunc(items, func(a, b decorated) int {
		c := cmp(a.row, b.row)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return a.index - b.index
	})

	out := make([]Row, len(items))
	for i, item := range items {
		out[i] = item.row
	}
	return out
}
