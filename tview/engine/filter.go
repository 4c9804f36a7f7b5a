package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// FilterRows returns the rows holding query in at least one stringified
// value, compared case-insensitively. An empty query returns rows itself.
// Row order is preserved and the input is not modified.
func FilterRows(rows []Row, query string) []Row {
	if query == "" {
		return rows
	}
	m := NewMatcher(query)
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if m.Match(row) {
			out = append(out, row)
		}
	}
	return out
}

// RowMatches reports whether any value of row contains query with the same
// semantics as FilterRows.
func RowMatches(row Row, query string) bool {
	return NewMatcher(query).Match(row)
}

// FoldQuery returns the case-folded form of query used for matching.
func FoldQuery(query string) string {
	return cases.Fold().String(query)
}

// Matcher tests rows against one folded search term. It is not safe for
// concurrent use.
type Matcher struct {
	folder cases.Caser
	needle string
}

// NewMatcher folds query once for repeated matching.
func NewMatcher(query string) *Matcher {
	folder := cases.Fold()
	return &Matcher{folder: folder, needle: folder.String(query)}
}

// Needle returns the folded search term.
func (m *Matcher) Needle() string {
	return m.needle
}

// Match reports whether any value of row contains the search term.
// Every row matches an empty term.
func (m *Matcher) Match(row Row) bool {
	if m.needle == "" {
		return true
	}
	for _, v := range row {
		if strings.Contains(m.folder.String(Stringify(v)), m.needle) {
			return true
		}
	}
	return false
}

// Stringify renders a cell value the way the filter and string comparator
// see it. Nil is the empty string.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return formatTime(x)
	case *time.Time:
		if x == nil {
			return ""
		}
		return formatTime(*x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
