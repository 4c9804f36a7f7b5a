package engine

import "golang.org/x/text/language"

// Query bundles the state a view feeds the engine on every render.
type Query struct {
	Filter FilterState
	Sort   SortState
	Page   PageState
	Locale language.Tag
}

// Prepare runs the filter and sort stages.
func Prepare(rows []Row, columns []ColumnSpec, q Query) []Row {
	filtered := FilterRows(rows, q.Filter.Query)
	return SortRows(filtered, columns, q.Sort, WithLocale(q.Locale))
}

// Apply runs filter, sort and paginate in order.
func Apply(rows []Row, columns []ColumnSpec, q Query) (Window, error) {
	return Paginate(Prepare(rows, columns, q), q.Page.Index, q.Page.Size)
}

// ClampPage pulls pageIndex back onto the last page of total rows. An
// empty row set clamps to 0. Negative indexes are returned as is.
func ClampPage(pageIndex, total, pageSize int) int {
	count := PageCount(total, pageSize)
	if pageIndex >= count {
		return max(0, count-1)
	}
	return pageIndex
}
