package view

import (
	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
	"github.com/ZanzyTHEbar/retail-tableview/tview/indexing"
	"github.com/ZanzyTHEbar/retail-tableview/tview/store"

	"golang.org/x/text/language"
)

// Pipeline is the filter, sort and page path shared by the screen
// controller and the JSON API. Each call works on the one snapshot it is
// given, so a concurrent Replace never mixes two row sets in a window.
type Pipeline struct {
	columns []engine.ColumnSpec
	locale  language.Tag
	memo    *indexing.Memo
}

// NewPipeline builds a pipeline over columns. With cache set, results are
// memoized per store generation; memoSize bounds the memo.
func NewPipeline(columns []engine.ColumnSpec, locale language.Tag, cache bool, memoSize int) *Pipeline {
	p := &Pipeline{columns: columns, locale: locale}
	if cache {
		p.memo = indexing.NewMemo(memoSize)
	}
	return p
}

// Filtered returns the rows of snap matching query, in store order.
func (p *Pipeline) Filtered(snap store.Snapshot, query string) []engine.Row {
	if p.memo != nil {
		return p.memo.Filter(snap, query)
	}
	return engine.FilterRows(snap.Rows, query)
}

// Rows returns the filtered and sorted rows of snap.
func (p *Pipeline) Rows(snap store.Snapshot, query string, sort engine.SortState) []engine.Row {
	if p.memo != nil {
		return p.memo.FilterSort(snap, p.columns, query, sort, p.locale)
	}
	return engine.Prepare(snap.Rows, p.columns, p.query(query, sort, engine.PageState{}))
}

// Window renders q.Page of snap. A page index past the end is pulled back
// onto the last page before paginating, against the same rows.
func (p *Pipeline) Window(snap store.Snapshot, q engine.Query) (engine.Window, error) {
	rows := p.Rows(snap, q.Filter.Query, q.Sort)
	return engine.Paginate(rows, engine.ClampPage(q.Page.Index, len(rows), q.Page.Size), q.Page.Size)
}

// Jump renders the 1-based page target of snap, or returns
// *engine.InvalidPageError when snap has no such page.
func (p *Pipeline) Jump(snap store.Snapshot, q engine.Query, target int) (engine.Window, error) {
	rows := p.Rows(snap, q.Filter.Query, q.Sort)
	idx, err := engine.ValidateJump(target, engine.PageCount(len(rows), q.Page.Size))
	if err != nil {
		return engine.Window{}, err
	}
	return engine.Paginate(rows, idx, q.Page.Size)
}

// PageCount returns the page count of the rows of snap matching query.
func (p *Pipeline) PageCount(snap store.Snapshot, query string, pageSize int) int {
	return engine.PageCount(len(p.Filtered(snap, query)), pageSize)
}

// CacheStats reports memo counters; ok is false when caching is off.
func (p *Pipeline) CacheStats() (memo indexing.MemoStats, prefix indexing.PrefixCacheStats, ok bool) {
	if p.memo == nil {
		return indexing.MemoStats{}, indexing.PrefixCacheStats{}, false
	}
	return p.memo.Stats(), p.memo.PrefixStats(), true
}

func (p *Pipeline) query(query string, sort engine.SortState, page engine.PageState) engine.Query {
	return engine.Query{
		Filter: engine.FilterState{Query: query},
		Sort:   sort,
		Page:   page,
		Locale: p.locale,
	}
}
