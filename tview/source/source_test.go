package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
	"github.com/ZanzyTHEbar/retail-tableview/tview/store"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemsJSON = `{"data":[
	{"id":1,"name":"Red Label","cost_price":"320.00","sale_price":"400","quantity":{"size":"ml","value":750,"identifier":"750ml"}},
	{"id":2,"name":"Old Monk","cost_price":150,"sale_price":null,"quantity":null}
]}`

func TestItemsSource(t *testing.T) {
	var gotStore string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/items", r.URL.Path)
		gotStore = r.Header.Get("store")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(itemsJSON))
	}))
	defer srv.Close()

	src := NewItemsSource(srv.URL+"/api/", "7", time.Second)
	src.Logger = zerolog.Nop()
	rows, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "7", gotStore)

	assert.Equal(t, "1", rows[0]["id"])
	assert.Equal(t, "Red Label", rows[0]["itemName"])
	assert.Equal(t, 320.0, rows[0]["costPrice"])
	assert.Equal(t, 400.0, rows[0]["sellingPrice"])
	qty, ok := rows[0]["quantity"].(Quantity)
	require.True(t, ok)
	assert.Equal(t, "750ml", qty.String())
	assert.Equal(t, 750.0, qty.Measure())
	assert.Equal(t, "750ml", engine.Stringify(qty))

	assert.Equal(t, 150.0, rows[1]["costPrice"])
	assert.Nil(t, rows[1]["sellingPrice"])
	assert.Nil(t, rows[1]["quantity"])

	// the filter stage sees the identifier
	assert.Len(t, engine.FilterRows(rows, "750ML"), 1)
}

func TestHTTPSourceGenericRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"vendorName":"Kiran Traders","totalAmount":1200}]}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, "deposits", "1", 0)
	src.Logger = zerolog.Nop()
	rows, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kiran Traders", rows[0]["vendorName"])
	assert.Equal(t, 1200.0, rows[0]["totalAmount"])
}

func TestHTTPSourceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.Error(w, "no such store", http.StatusNotFound)
		case "/garbage":
			w.Write([]byte("<html>"))
		case "/badprice":
			w.Write([]byte(`{"data":[{"id":1,"name":"x","cost_price":"abc"}]}`))
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, "/missing", "1", time.Second)
	src.Logger = zerolog.Nop()
	_, err := src.Load(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "no such store", se.Body)

	src.Path = "/garbage"
	_, err = src.Load(context.Background())
	assert.Error(t, err)

	items := NewItemsSource(srv.URL, "1", time.Second)
	items.Path = "/badprice"
	items.Logger = zerolog.Nop()
	_, err = items.Load(context.Background())
	assert.ErrorContains(t, err, "element 0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src.Path = "/garbage"
	_, err = src.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLSource(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE transactions (
		itemName TEXT, Quantity INTEGER, totalAmount REAL, transactionDate TEXT, paymentMode TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO transactions VALUES
		('Red Label', 2, 800.5, '2024-03-01', 'cash'),
		('Old Monk', 1, 150, '2024-02-11', NULL)`)
	require.NoError(t, err)

	src := &SQLSource{DB: db, Query: "SELECT * FROM transactions WHERE Quantity >= ? ORDER BY itemName", Args: []any{1}}
	rows, err := src.Load(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Old Monk", rows[0]["itemName"])
	assert.Equal(t, int64(1), rows[0]["Quantity"])
	assert.Nil(t, rows[0]["paymentMode"])
	assert.Equal(t, 800.5, rows[1]["totalAmount"])

	cols := []engine.ColumnSpec{{ID: "transactionDate", Sortable: true, DataType: engine.Date}}
	sorted := engine.SortRows(rows, cols, engine.SortState{Key: "transactionDate"})
	assert.Equal(t, "Old Monk", sorted[0]["itemName"])

	empty := &SQLSource{DB: db, Query: "SELECT * FROM transactions WHERE Quantity > 99"}
	rows, err = empty.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	_, err = (&SQLSource{DB: db, Query: "SELECT * FROM nowhere"}).Load(ctx)
	assert.Error(t, err)
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN("rob", "secret", "db.local", 3306, "shop")
	assert.True(t, strings.HasPrefix(dsn, "rob:secret@tcp(db.local:3306)/shop?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
}

func TestArrowSource(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "customerName", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "totalAmount", Type: arrow.PrimitiveTypes.Float64},
		{Name: "visits", Type: arrow.PrimitiveTypes.Int32},
		{Name: "settled", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "dueDate", Type: arrow.FixedWidthTypes.Date32},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues([]string{"Asha", ""}, []bool{true, false})
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{99.5, 10}, nil)
	b.Field(2).(*array.Int32Builder).AppendValues([]int32{3, 1}, nil)
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false}, nil)
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	b.Field(4).(*array.Date32Builder).AppendValues([]arrow.Date32{arrow.Date32FromTime(due), arrow.Date32FromTime(due)}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	rows := RowsFromRecord(rec)
	require.Len(t, rows, 2)
	assert.Equal(t, "Asha", rows[0]["customerName"])
	assert.Nil(t, rows[1]["customerName"])
	assert.Equal(t, 99.5, rows[0]["totalAmount"])
	assert.Equal(t, int64(3), rows[0]["visits"])
	assert.Equal(t, true, rows[0]["settled"])
	assert.Equal(t, due, rows[0]["dueDate"])
	assert.Equal(t, "2024-05-01", engine.Stringify(rows[0]["dueDate"]))

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()
	loaded, err := ArrowSource{Table: tbl}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
}

func TestStaticSource(t *testing.T) {
	in := []engine.Row{{"a": 1}, {"a": 2}}
	out, err := StaticSource{Rows: in}.Load(context.Background())
	require.NoError(t, err)
	out[0], out[1] = out[1], out[0]
	assert.Equal(t, 1, in[0]["a"])
}

func TestLoaderLoadAll(t *testing.T) {
	good := store.New(nil)
	bad := store.New([]engine.Row{{"keep": true}})
	before := bad.Generation()

	l := NewLoader(2, zerolog.Nop())
	err := l.LoadAll(context.Background(), []Target{
		{Name: "inventory", Source: StaticSource{Rows: []engine.Row{{"itemName": "Sula"}}}, Store: good},
		{Name: "deposits", Source: SourceFunc(func(context.Context) ([]engine.Row, error) {
			return nil, errors.New("api down")
		}), Store: bad},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "load deposits")
	assert.Equal(t, 1, good.Len())
	assert.Equal(t, before, bad.Generation())

	assert.NoError(t, DefaultLoader().LoadAll(context.Background(), nil))
}
