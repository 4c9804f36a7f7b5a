package view

import (
	"fmt"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the footer of a numeric report column. Count excludes cells
// that are not numbers.
type Summary struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Skipped int     `json:"skipped"`
	Sum     float64 `json:"sum"`
	Mean    float64 `json:"mean"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Summarize aggregates a Number column over the rows matching the current
// query. Sort and page do not affect it.
func (v *View) Summarize(columnID string) (Summary, error) {
	v.mu.Lock()
	col, ok := engine.FindColumn(v.columns, columnID)
	if !ok {
		v.mu.Unlock()
		return Summary{}, fmt.Errorf("%w: %q", engine.ErrColumnNotFound, columnID)
	}
	rows := v.pipe.Filtered(v.store.Snapshot(), v.query)
	v.mu.Unlock()

	if col.DataType != engine.Number {
		return Summary{}, fmt.Errorf("%w: %q is %s", ErrNotNumeric, columnID, col.DataType)
	}
	return SummarizeRows(rows, columnID), nil
}

// SummarizeRows aggregates the numeric cells of columnID.
func SummarizeRows(rows []engine.Row, columnID string) Summary {
	s := Summary{Column: columnID}
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		f, ok := engine.NumericValue(row.Get(columnID))
		if !ok {
			s.Skipped++
			continue
		}
		values = append(values, f)
	}
	s.Count = len(values)
	if s.Count == 0 {
		return s
	}
	s.Sum = floats.Sum(values)
	s.Mean = stat.Mean(values, nil)
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	return s
}
