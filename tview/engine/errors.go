package engine

import (
	"errors"
	"fmt"
)

// Errors returned by the engine.
var (
	// ErrInvalidPage is matched by every *InvalidPageError.
	ErrInvalidPage = errors.New("invalid page number")

	// ErrInvalidPageSize is returned when a page size is below one.
	ErrInvalidPageSize = errors.New("invalid page size")

	ErrUnknownDataType   = errors.New("unknown data type")
	ErrUnknownDirection  = errors.New("unknown sort direction")
	ErrDuplicateColumn   = errors.New("duplicate column id")
	ErrEmptyColumnID     = errors.New("column id cannot be empty")
	ErrColumnNotFound    = errors.New("column not found")
	ErrColumnNotSortable = errors.New("column is not sortable")
)

// InvalidPageError reports a page request outside [1, PageCount].
// Requested is the 1-based page the caller asked for.
type InvalidPageError struct {
	Requested int
	PageCount int
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("invalid page number %d (page count %d)", e.Requested, e.PageCount)
}

// Is lets errors.Is(err, ErrInvalidPage) match.
func (e *InvalidPageError) Is(target error) bool {
	return target == ErrInvalidPage
}
