package source

import (
	"context"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// ArrowSource exposes an Arrow table, such as an exported report, as rows.
type ArrowSource struct {
	Table arrow.Table
}

func (s ArrowSource) Load(ctx context.Context) ([]engine.Row, error) {
	rows := make([]engine.Row, 0, s.Table.NumRows())
	tr := array.NewTableReader(s.Table, 1024)
	defer tr.Release()
	for tr.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = append(rows, RowsFromRecord(tr.Record())...)
	}
	return rows, nil
}

// RowsFromRecord converts one record batch. Fields keep their schema
// names; unsupported types fall back to their string form.
func RowsFromRecord(rec arrow.Record) []engine.Row {
	n := int(rec.NumRows())
	rows := make([]engine.Row, n)
	for i := range rows {
		rows[i] = make(engine.Row, rec.NumCols())
	}
	for c := 0; c < int(rec.NumCols()); c++ {
		name := rec.ColumnName(c)
		col := rec.Column(c)
		for i := 0; i < n; i++ {
			rows[i][name] = cellValue(col, i)
		}
	}
	return rows
}

func cellValue(col arrow.Array, i int) any {
	if col.IsNull(i) {
		return nil
	}
	switch a := col.(type) {
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return uint64(a.Value(i))
	case *array.Uint16:
		return uint64(a.Value(i))
	case *array.Uint32:
		return uint64(a.Value(i))
	case *array.Uint64:
		return a.Value(i)
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Date32:
		return a.Value(i).ToTime().UTC()
	case *array.Date64:
		return a.Value(i).ToTime().UTC()
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC()
	default:
		return col.ValueStr(i)
	}
}
