// Package source loads rows for the list views from the item API, a SQL
// database, Arrow tables or a fixed slice.
package source

import (
	"context"
	"slices"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
)

// Source produces the full row set of one view.
type Source interface {
	Load(ctx context.Context) ([]engine.Row, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]engine.Row, error)

func (f SourceFunc) Load(ctx context.Context) ([]engine.Row, error) {
	return f(ctx)
}

// StaticSource serves a fixed slice. Each Load returns a fresh copy of the
// slice header so callers cannot reorder the original.
type StaticSource struct {
	Rows []engine.Row
}

func (s StaticSource) Load(ctx context.Context) ([]engine.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.Rows), nil
}
