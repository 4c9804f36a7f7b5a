package engine

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// dateLayouts are tried in order when a date cell holds text.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"02-01-2006",
}

// EpochMillis converts a date cell to epoch milliseconds. Numbers are taken
// as epoch milliseconds already. ok is false for nil or unparseable values.
func EpochMillis(v any) (ms int64, ok bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case time.Time:
		if x.IsZero() {
			return 0, false
		}
		return x.UnixMilli(), true
	case *time.Time:
		if x == nil || x.IsZero() {
			return 0, false
		}
		return x.UnixMilli(), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UnixMilli(), true
			}
		}
		return 0, false
	default:
		if f, ok := NumericValue(v); ok {
			return int64(f), true
		}
		return 0, false
	}
}

// NumericValue converts a number cell to float64. Numeric strings are
// accepted, NaN is not.
func NumericValue(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case []byte:
		return NumericValue(string(x))
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// compareValid orders a pair where either side may be invalid. Invalid
// values sort below all valid ones and equal each other.
func compareValid(aOK, bOK bool) (int, bool) {
	switch {
	case aOK && bOK:
		return 0, false
	case !aOK && !bOK:
		return 0, true
	case !aOK:
		return -1, true
	default:
		return 1, true
	}
}

func compareDates(a, b any) int {
	ma, aOK := EpochMillis(a)
	mb, bOK := EpochMillis(b)
	if c, done := compareValid(aOK, bOK); done {
		return c
	}
	switch {
	case ma < mb:
		return -1
	case ma > mb:
		return 1
	default:
		return 0
	}
}

func compareNumbers(a, b any) int {
	fa, aOK := NumericValue(a)
	fb, bOK := NumericValue(b)
	if c, done := compareValid(aOK, bOK); done {
		return c
	}
	switch d := fa - fb; {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

// comparatorFor builds the row comparator for one column. The collator is
// only created for string columns and belongs to a single sort call.
func comparatorFor(col ColumnSpec, tag language.Tag) Comparator {
	if col.Comparator != nil {
		return col.Comparator
	}
	id := col.ID
	switch col.DataType {
	case Date:
		return func(a, b Row) int { return compareDates(a.Get(id), b.Get(id)) }
	case Number:
		return func(a, b Row) int { return compareNumbers(a.Get(id), b.Get(id)) }
	default:
		coll := collate.New(tag)
		return func(a, b Row) int {
			return coll.CompareString(Stringify(a.Get(id)), Stringify(b.Get(id)))
		}
	}
}
