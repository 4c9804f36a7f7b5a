// Package view holds the state of one list screen and renders it through
// the engine.
package view

import (
	"fmt"
	"slices"
	"sync"

	internal "github.com/ZanzyTHEbar/retail-tableview/tview"
	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
	"github.com/ZanzyTHEbar/retail-tableview/tview/indexing"
	"github.com/ZanzyTHEbar/retail-tableview/tview/store"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// Options configure a View. Zero values fall back to the package defaults.
type Options struct {
	PageSize        int
	PageSizeOptions []int
	Locale          language.Tag
	// Cache enables the Filter+Sort memo. MemoSize bounds its entries.
	Cache    bool
	MemoSize int
	Logger   *zerolog.Logger
}

// View is one screen: its columns, its rows and the user's current
// query, sort and page.
type View struct {
	mu sync.Mutex

	name    string
	columns []engine.ColumnSpec
	store   *store.Store
	pipe    *Pipeline
	locale  language.Tag
	logger  zerolog.Logger

	query       string
	sort        engine.SortState
	pageIndex   int
	pageSize    int
	sizeOptions []int
}

// New validates columns and the starting page size.
func New(name string, columns []engine.ColumnSpec, st *store.Store, opts Options) (*View, error) {
	if err := engine.ValidateColumns(columns); err != nil {
		return nil, fmt.Errorf("view %s: %w", name, err)
	}
	if st == nil {
		st = store.New(nil)
	}

	size := opts.PageSize
	if size == 0 {
		size = internal.DefaultPageSize
	}
	sizeOptions := opts.PageSizeOptions
	if len(sizeOptions) == 0 {
		sizeOptions = internal.DefaultPageSizeOptions
	}
	if size < 1 || !slices.Contains(sizeOptions, size) {
		return nil, fmt.Errorf("view %s: %w: %d not in %v", name, engine.ErrInvalidPageSize, size, sizeOptions)
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	v := &View{
		name:        name,
		columns:     slices.Clone(columns),
		store:       st,
		locale:      opts.Locale,
		logger:      logger.With().Str("view", name).Logger(),
		pageSize:    size,
		sizeOptions: slices.Clone(sizeOptions),
	}
	v.pipe = NewPipeline(v.columns, opts.Locale, opts.Cache, opts.MemoSize)
	return v, nil
}

func (v *View) Name() string { return v.name }

// Columns returns a copy of the column specs.
func (v *View) Columns() []engine.ColumnSpec { return slices.Clone(v.columns) }

// Store returns the backing store.
func (v *View) Store() *store.Store { return v.store }

// State is a point-in-time copy of the user controlled state.
type State struct {
	Query     string
	Sort      engine.SortState
	PageIndex int
	PageSize  int
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{Query: v.query, Sort: v.sort, PageIndex: v.pageIndex, PageSize: v.pageSize}
}

// PageSizeOptions returns the sizes SetPageSize accepts.
func (v *View) PageSizeOptions() []int { return slices.Clone(v.sizeOptions) }

// SetQuery changes the search term and returns to the first page.
func (v *View) SetQuery(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = q
	v.pageIndex = 0
}

// ToggleSort selects key as the sort column, or flips its direction when it
// is already selected.
func (v *View) ToggleSort(key string) (engine.SortState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	col, ok := engine.FindColumn(v.columns, key)
	if !ok {
		return v.sort, fmt.Errorf("%w: %q", engine.ErrColumnNotFound, key)
	}
	if !col.Sortable {
		return v.sort, fmt.Errorf("%w: %q", engine.ErrColumnNotSortable, key)
	}
	v.sort = v.sort.Toggle(key)
	v.logger.Debug().Str("sort", v.sort.String()).Msg("sort changed")
	return v.sort, nil
}

// SetSort installs a sort state directly, with the same checks as
// ToggleSort. An empty key clears the sort.
func (v *View) SetSort(state engine.SortState) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if state.Key != "" {
		col, ok := engine.FindColumn(v.columns, state.Key)
		if !ok {
			return fmt.Errorf("%w: %q", engine.ErrColumnNotFound, state.Key)
		}
		if !col.Sortable {
			return fmt.Errorf("%w: %q", engine.ErrColumnNotSortable, state.Key)
		}
	}
	v.sort = state
	return nil
}

func (v *View) ClearSort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = engine.SortState{}
}

// SetPageSize accepts only the configured options and returns to the
// first page.
func (v *View) SetPageSize(n int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !slices.Contains(v.sizeOptions, n) {
		return fmt.Errorf("%w: %d not in %v", engine.ErrInvalidPageSize, n, v.sizeOptions)
	}
	v.pageSize = n
	v.pageIndex = 0
	return nil
}

// SetPage moves to a zero-based page. Out of range indexes are clamped to
// the last page.
func (v *View) SetPage(i int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	snap := v.store.Snapshot()
	if i < 0 {
		return &engine.InvalidPageError{Requested: i + 1, PageCount: v.pipe.PageCount(snap, v.query, v.pageSize)}
	}
	v.pageIndex = v.clampLocked(snap, i)
	return nil
}

// NextPage advances one page. It reports false on the last page.
func (v *View) NextPage() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := len(v.pipe.Filtered(v.store.Snapshot(), v.query))
	v.pageIndex = engine.ClampPage(v.pageIndex, n, v.pageSize)
	if v.pageIndex+1 >= engine.PageCount(n, v.pageSize) {
		return false
	}
	v.pageIndex++
	return true
}

// PrevPage goes back one page. It reports false on the first page.
func (v *View) PrevPage() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pageIndex = v.clampLocked(v.store.Snapshot(), v.pageIndex)
	if v.pageIndex == 0 {
		return false
	}
	v.pageIndex--
	return true
}

// Jump moves to the 1-based page p. An invalid target leaves the current
// page as it was and returns *engine.InvalidPageError.
func (v *View) Jump(p int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	count := v.pipe.PageCount(v.store.Snapshot(), v.query, v.pageSize)
	idx, err := engine.ValidateJump(p, count)
	if err != nil {
		v.logger.Warn().Int("requested", p).Int("pageCount", count).Msg("page out of range")
		return err
	}
	v.pageIndex = idx
	return nil
}

// Replace swaps the row set and keeps the page index in range.
func (v *View) Replace(rows []engine.Row) {
	gen := v.store.Replace(rows)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pageIndex = v.clampLocked(v.store.Snapshot(), v.pageIndex)
	v.logger.Debug().Str("generation", gen.String()).Int("rows", len(rows)).Msg("rows replaced")
}

// Render returns the visible window for the current state. Clamping and
// paging use the same snapshot.
func (v *View) Render() (engine.Window, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	w, err := v.pipe.Window(v.store.Snapshot(), v.queryLocked())
	if err != nil {
		return w, err
	}
	v.pageIndex = w.PageIndex
	return w, nil
}

func (v *View) queryLocked() engine.Query {
	return engine.Query{
		Filter: engine.FilterState{Query: v.query},
		Sort:   v.sort,
		Page:   engine.PageState{Index: v.pageIndex, Size: v.pageSize},
		Locale: v.locale,
	}
}

// clampLocked pulls i back onto the last page of snap under the current
// query.
func (v *View) clampLocked(snap store.Snapshot, i int) int {
	return engine.ClampPage(i, len(v.pipe.Filtered(snap, v.query)), v.pageSize)
}

// CacheStats reports memo counters; ok is false when caching is off.
func (v *View) CacheStats() (memo indexing.MemoStats, prefix indexing.PrefixCacheStats, ok bool) {
	return v.pipe.CacheStats()
}
