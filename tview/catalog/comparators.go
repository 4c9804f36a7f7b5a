package catalog

import (
	"cmp"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
)

// ComparatorFactory builds a comparator bound to one column id.
type ComparatorFactory func(columnID string) engine.Comparator

// Registry maps the comparator names a catalog may reference.
type Registry map[string]ComparatorFactory

// Measured is implemented by cell values that carry a separate magnitude,
// such as a quantity rendered as "750ml" with value 750.
type Measured interface {
	Measure() float64
}

// BuiltinComparators returns a fresh registry holding "quantity".
func BuiltinComparators() Registry {
	return Registry{
		"quantity": QuantityComparator,
	}
}

// QuantityComparator orders by the magnitude of a Measured cell, falling
// back to a plain numeric reading. Cells with neither sort lowest.
func QuantityComparator(columnID string) engine.Comparator {
	return func(a, b engine.Row) int {
		av, aOK := measure(a.Get(columnID))
		bv, bOK := measure(b.Get(columnID))
		switch {
		case aOK && bOK:
			return cmp.Compare(av, bv)
		case aOK:
			return 1
		case bOK:
			return -1
		default:
			return 0
		}
	}
}

func measure(v any) (float64, bool) {
	if m, ok := v.(Measured); ok {
		return m.Measure(), true
	}
	return engine.NumericValue(v)
}
