package source

import (
	"context"
	"fmt"
	"time"

	internal "github.com/ZanzyTHEbar/retail-tableview/tview"
	"github.com/ZanzyTHEbar/retail-tableview/tview/store"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// Target pairs a named source with the store it refreshes.
type Target struct {
	Name   string
	Source Source
	Store  *store.Store
}

// Loader refreshes many stores concurrently.
type Loader struct {
	maxWorkers int
	logger     zerolog.Logger
}

// NewLoader bounds the number of concurrent loads. maxWorkers < 1 means 4.
func NewLoader(maxWorkers int, logger zerolog.Logger) *Loader {
	if maxWorkers < 1 {
		maxWorkers = 4
	}
	return &Loader{maxWorkers: maxWorkers, logger: logger}
}

// DefaultLoader uses the package logger.
func DefaultLoader() *Loader {
	return NewLoader(4, internal.GetLogger())
}

// LoadAll loads every target. A failed target keeps its previous rows; the
// errors of all failed targets are joined.
func (l *Loader) LoadAll(ctx context.Context, targets []Target) error {
	p := pool.New().WithMaxGoroutines(l.maxWorkers).WithContext(ctx)
	for _, t := range targets {
		p.Go(func(ctx context.Context) error {
			start := time.Now()
			rows, err := t.Source.Load(ctx)
			if err != nil {
				l.logger.Error().Err(err).Str("view", t.Name).Msg("load failed")
				return fmt.Errorf("load %s: %w", t.Name, err)
			}
			gen := t.Store.Replace(rows)
			l.logger.Info().
				Str("view", t.Name).
				Int("rows", len(rows)).
				Str("generation", gen.String()).
				Dur("took", time.Since(start)).
				Msg("view loaded")
			return nil
		})
	}
	return p.Wait()
}
