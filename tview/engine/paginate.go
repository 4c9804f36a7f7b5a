package engine

import "fmt"

// Window is the visible slice of one page plus the counts a pager needs.
// PageCount is zero for an empty row set.
type Window struct {
	Visible   []Row
	PageCount int
	PageIndex int
	PageSize  int
	Total     int
}

// PageCount returns ceil(total/pageSize), or 0 when pageSize is below one.
func PageCount(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	n := total / pageSize
	if total%pageSize != 0 {
		n++
	}
	return n
}

// Paginate returns the window for pageIndex. It never clamps: an index
// past the last page yields an empty Visible slice.
func Paginate(rows []Row, pageIndex, pageSize int) (Window, error) {
	if pageSize < 1 {
		return Window{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	if pageIndex < 0 {
		return Window{}, &InvalidPageError{Requested: pageIndex + 1, PageCount: PageCount(len(rows), pageSize)}
	}

	total := len(rows)
	w := Window{
		PageCount: PageCount(total, pageSize),
		PageIndex: pageIndex,
		PageSize:  pageSize,
		Total:     total,
	}

	// compare against the page count first; pageIndex*pageSize may overflow
	if pageIndex >= w.PageCount {
		w.Visible = []Row{}
		return w, nil
	}
	start := pageIndex * pageSize
	end := min(start+pageSize, total)
	w.Visible = rows[start:end:end]
	return w, nil
}

// ValidateJump checks a 1-based jump target against pageCount and returns
// the zero-based index to move to.
func ValidateJump(target, pageCount int) (int, error) {
	if target < 1 || target > pageCount {
		return 0, &InvalidPageError{Requested: target, PageCount: pageCount}
	}
	return target - 1, nil
}

// Jump validates a 1-based target against the window's page count.
func (w Window) Jump(target int) (int, error) {
	return ValidateJump(target, w.PageCount)
}

// HasNext reports whether a page follows this one.
func (w Window) HasNext() bool {
	return w.PageIndex+1 < w.PageCount
}

// HasPrev reports whether a page precedes this one.
func (w Window) HasPrev() bool {
	return w.PageIndex > 0
}
