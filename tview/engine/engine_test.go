package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func inventoryRows() []Row {
	return []Row{
		{"name": "Red Label", "cost": 320, "sell": 390},
		{"name": "Old Monk", "cost": 150, "sell": 180},
	}
}

func inventoryColumns() []ColumnSpec {
	return []ColumnSpec{
		{ID: "name", Label: "Item Name", Sortable: true},
		{ID: "cost", Label: "Cost Price", Sortable: true, DataType: Number},
		{ID: "sell", Label: "Selling Price", Sortable: true, DataType: Number},
	}
}

func names(rows []Row, key string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = Stringify(r[key])
	}
	return out
}

func TestFilterRows(t *testing.T) {
	t.Run("EmptyQueryIsIdentity", func(t *testing.T) {
		rows := inventoryRows()
		got := FilterRows(rows, "")
		require.Len(t, got, len(rows))
		assert.Equal(t, rows, got)
		assert.Same(t, &rows[0], &got[0], "empty query must return the input slice")
	})

	t.Run("CaseInsensitiveSearch", func(t *testing.T) {
		got := FilterRows(inventoryRows(), "red")
		require.Len(t, got, 1)
		assert.Equal(t, "Red Label", got[0]["name"])

		assert.Len(t, FilterRows(inventoryRows(), "OLD MONK"), 1)
	})

	t.Run("MatchesStringifiedNumbers", func(t *testing.T) {
		got := FilterRows(inventoryRows(), "15")
		require.Len(t, got, 1)
		assert.Equal(t, "Old Monk", got[0]["name"])
	})

	t.Run("NilCellsDoNotPanic", func(t *testing.T) {
		rows := []Row{{"name": nil, "cost": 1}, {"name": "Sula"}}
		assert.NotPanics(t, func() {
			got := FilterRows(rows, "sula")
			assert.Len(t, got, 1)
		})
	})

	t.Run("PreservesOrderAndInput", func(t *testing.T) {
		rows := []Row{{"n": "ab"}, {"n": "x"}, {"n": "cab"}, {"n": "abc"}}
		got := FilterRows(rows, "ab")
		assert.Equal(t, []string{"ab", "cab", "abc"}, names(got, "n"))
		assert.Equal(t, []string{"ab", "x", "cab", "abc"}, names(rows, "n"))
	})

	t.Run("DatesAreSearchable", func(t *testing.T) {
		rows := []Row{{"d": time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)}}
		assert.Len(t, FilterRows(rows, "2024-03"), 1)
	})
}

func TestFilterRowsCorrectnessProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	alphabet := []string{"a", "B", "c", "D", "1", "2"}
	word := func(n int) string {
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteString(alphabet[r.Intn(len(alphabet))])
		}
		return sb.String()
	}

	for trial := 0; trial < 50; trial++ {
		rows := make([]Row, 20)
		for i := range rows {
			rows[i] = Row{"s": word(4), "n": r.Intn(300)}
		}
		query := word(1 + r.Intn(2))
		got := FilterRows(rows, query)

		for i := range got {
			assert.True(t, RowMatches(got[i], query))
		}
		j := 0
		for i := range rows {
			if j < len(got) && fmt.Sprint(got[j]) == fmt.Sprint(rows[i]) {
				j++
				continue
			}
			lower := strings.ToLower(query)
			assert.False(t,
				strings.Contains(strings.ToLower(Stringify(rows[i]["s"])), lower) ||
					strings.Contains(Stringify(rows[i]["n"]), lower),
				"excluded row %v matches %q", rows[i], query)
		}
		assert.Equal(t, len(got), j)
	}
}

func TestSortRows(t *testing.T) {
	cols := inventoryColumns()

	t.Run("UnsortedReturnsInput", func(t *testing.T) {
		rows := inventoryRows()
		got := SortRows(rows, cols, SortState{})
		assert.Equal(t, rows, got)
	})

	t.Run("NumberAscendingAndDescending", func(t *testing.T) {
		rows := inventoryRows()
		asc := SortRows(rows, cols, SortState{Key: "cost"})
		assert.Equal(t, []string{"Old Monk", "Red Label"}, names(asc, "name"))

		desc := SortRows(rows, cols, SortState{Key: "cost", Direction: Desc})
		assert.Equal(t, []string{"Red Label", "Old Monk"}, names(desc, "name"))

		assert.Equal(t, "Red Label", rows[0]["name"], "input must not be mutated")
	})

	t.Run("DateAscending", func(t *testing.T) {
		dcols := []ColumnSpec{{ID: "date", DataType: Date, Sortable: true}}
		rows := []Row{{"date": "2024-03-13"}, {"date": "2024-02-24"}}
		got := SortRows(rows, dcols, SortState{Key: "date"})
		assert.Equal(t, []string{"2024-02-24", "2024-03-13"}, names(got, "date"))
	})

	t.Run("UnparseableDatesSortFirstAscending", func(t *testing.T) {
		dcols := []ColumnSpec{{ID: "date", DataType: Date}}
		rows := []Row{
			{"date": "2024-03-1"},
			{"date": "not a date"},
			{"date": time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
			{"date": nil},
		}
		got := SortRows(rows, dcols, SortState{Key: "date"})
		assert.Equal(t, []string{"not a date", "", "2024-01-05", "2024-03-1"}, names(got, "date"))

		got = SortRows(rows, dcols, SortState{Key: "date", Direction: Desc})
		assert.Equal(t, []string{"2024-03-1", "2024-01-05", "not a date", ""}, names(got, "date"))
	})

	t.Run("NumericStringsAndJunk", func(t *testing.T) {
		rows := []Row{{"v": "10"}, {"v": 9.5}, {"v": "abc"}, {"v": int64(-2)}}
		got := SortRows(rows, []ColumnSpec{{ID: "v", DataType: Number}}, SortState{Key: "v"})
		assert.Equal(t, []string{"abc", "-2", "9.5", "10"}, names(got, "v"))
	})

	t.Run("StringColumnWithNonStringValues", func(t *testing.T) {
		rows := []Row{{"v": 3}, {"v": "b"}, {"v": nil}, {"v": "A"}}
		assert.NotPanics(t, func() {
			got := SortRows(rows, []ColumnSpec{{ID: "v"}}, SortState{Key: "v"})
			assert.Equal(t, []string{"", "3", "A", "b"}, names(got, "v"))
		})
	})

	t.Run("LocaleCollation", func(t *testing.T) {
		rows := []Row{{"v": "zebra"}, {"v": "Äpfel"}, {"v": "Bär"}}
		got := SortRows(rows, []ColumnSpec{{ID: "v"}}, SortState{Key: "v"}, WithLocale(language.German))
		assert.Equal(t, []string{"Äpfel", "Bär", "zebra"}, names(got, "v"))
	})

	t.Run("CustomComparator", func(t *testing.T) {
		byLen := ColumnSpec{ID: "name", Comparator: func(a, b Row) int {
			return len(Stringify(a["name"])) - len(Stringify(b["name"]))
		}}
		rows := []Row{{"name": "Sula"}, {"name": "Old Monk"}, {"name": "Red Label"}}
		got := SortRows(rows, []ColumnSpec{byLen}, SortState{Key: "name", Direction: Desc})
		assert.Equal(t, []string{"Red Label", "Old Monk", "Sula"}, names(got, "name"))
	})

	t.Run("UndeclaredKeySortsAsString", func(t *testing.T) {
		rows := []Row{{"x": "b"}, {"x": "a"}}
		got := SortRows(rows, nil, SortState{Key: "x"})
		assert.Equal(t, []string{"a", "b"}, names(got, "x"))
	})
}

func TestSortStability(t *testing.T) {
	cols := []ColumnSpec{{ID: "type"}, {ID: "cost", DataType: Number}}
	rows := []Row{
		{"id": "1", "type": "Whiskey", "cost": 320},
		{"id": "2", "type": "Rum", "cost": 150},
		{"id": "3", "type": "Whiskey", "cost": 279},
		{"id": "4", "type": "Rum", "cost": 150},
		{"id": "5", "type": "Whiskey", "cost": 700},
	}

	asc := SortRows(rows, cols, SortState{Key: "type"})
	assert.Equal(t, []string{"2", "4", "1", "3", "5"}, names(asc, "id"))

	desc := SortRows(rows, cols, SortState{Key: "type", Direction: Desc})
	assert.Equal(t, []string{"1", "3", "5", "2", "4"}, names(desc, "id"))

	byCost := SortRows(rows, cols, SortState{Key: "cost"})
	assert.Equal(t, []string{"2", "4", "3", "1", "5"}, names(byCost, "id"))
}

func TestSortRoundTrip(t *testing.T) {
	cols := []ColumnSpec{{ID: "n", DataType: Number}, {ID: "s"}}
	r := rand.New(rand.NewSource(42))
	perm := r.Perm(40)
	rows := make([]Row, len(perm))
	for i, p := range perm {
		rows[i] = Row{"n": p, "s": fmt.Sprintf("item-%03d", p)}
	}

	for _, key := range []string{"n", "s"} {
		asc := SortRows(rows, cols, SortState{Key: key, Direction: Asc})
		desc := SortRows(asc, cols, SortState{Key: key, Direction: Desc})
		require.Len(t, desc, len(asc))
		for i := range asc {
			assert.Equal(t, asc[i], desc[len(desc)-1-i], "key %s position %d", key, i)
		}
	}
}

func TestPaginate(t *testing.T) {
	rows := make([]Row, 7)
	for i := range rows {
		rows[i] = Row{"i": i}
	}

	t.Run("SevenRowsPageSizeFive", func(t *testing.T) {
		w, err := Paginate(rows, 0, 5)
		require.NoError(t, err)
		assert.Len(t, w.Visible, 5)
		assert.Equal(t, 2, w.PageCount)
		assert.Equal(t, 7, w.Total)
		assert.True(t, w.HasNext())
		assert.False(t, w.HasPrev())

		w, err = Paginate(rows, 1, 5)
		require.NoError(t, err)
		assert.Len(t, w.Visible, 2)
		assert.False(t, w.HasNext())

		_, err = w.Jump(3)
		var pageErr *InvalidPageError
		require.ErrorAs(t, err, &pageErr)
		assert.ErrorIs(t, err, ErrInvalidPage)
		assert.Equal(t, 3, pageErr.Requested)
		assert.Equal(t, 2, pageErr.PageCount)
	})

	t.Run("EmptyRows", func(t *testing.T) {
		w, err := Paginate(nil, 0, 5)
		require.NoError(t, err)
		assert.Equal(t, 0, w.PageCount)
		assert.Empty(t, w.Visible)
		_, err = w.Jump(1)
		assert.ErrorIs(t, err, ErrInvalidPage)
	})

	t.Run("IndexPastEndIsEmpty", func(t *testing.T) {
		w, err := Paginate(rows, 9, 5)
		require.NoError(t, err)
		assert.Empty(t, w.Visible)
		assert.Equal(t, 9, w.PageIndex)
	})

	t.Run("HugeIndexOrSizeDoesNotOverflow", func(t *testing.T) {
		for _, tc := range []struct{ index, size int }{
			{1 << 62, 2},
			{1<<62 + 1, 4},
			{math.MaxInt, 5},
			{1, math.MaxInt},
		} {
			w, err := Paginate(rows, tc.index, tc.size)
			require.NoError(t, err, "index %d size %d", tc.index, tc.size)
			assert.NotNil(t, w.Visible)
			assert.Empty(t, w.Visible, "index %d size %d", tc.index, tc.size)
			assert.Equal(t, tc.index, w.PageIndex)
		}

		w, err := Paginate(rows, 0, math.MaxInt)
		require.NoError(t, err)
		assert.Equal(t, 1, w.PageCount)
		assert.Len(t, w.Visible, 7)

		w, err = Apply(rows, nil, Query{Page: PageState{Index: 1 << 62, Size: 2}})
		require.NoError(t, err)
		assert.Empty(t, w.Visible)
	})

	t.Run("InvalidArguments", func(t *testing.T) {
		_, err := Paginate(rows, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidPageSize)
		_, err = Paginate(rows, -1, 5)
		assert.ErrorIs(t, err, ErrInvalidPage)
	})

	t.Run("VisibleCannotGrowIntoSource", func(t *testing.T) {
		w, err := Paginate(rows, 0, 5)
		require.NoError(t, err)
		_ = append(w.Visible, Row{"i": "x"})
		assert.Equal(t, 5, rows[5]["i"])
	})
}

func TestPaginationCoverage(t *testing.T) {
	for _, n := range []int{0, 1, 4, 5, 6, 25, 26} {
		rows := make([]Row, n)
		for i := range rows {
			rows[i] = Row{"i": i}
		}
		for size := 1; size <= 7; size++ {
			first, err := Paginate(rows, 0, size)
			require.NoError(t, err)

			var joined []Row
			for p := 0; p < first.PageCount; p++ {
				w, err := Paginate(rows, p, size)
				require.NoError(t, err)
				joined = append(joined, w.Visible...)
			}
			if n == 0 {
				assert.Empty(t, joined)
				continue
			}
			assert.Equal(t, rows, joined, "n=%d size=%d", n, size)
		}
	}
}

func TestValidateJumpBounds(t *testing.T) {
	const pageCount = 4
	for p := -3; p <= pageCount+3; p++ {
		idx, err := ValidateJump(p, pageCount)
		if p >= 1 && p <= pageCount {
			require.NoError(t, err, "page %d", p)
			assert.Equal(t, p-1, idx)
			continue
		}
		assert.True(t, errors.Is(err, ErrInvalidPage), "page %d must be rejected", p)
	}
}

func TestApply(t *testing.T) {
	rows := []Row{
		{"itemName": "Red Label", "costPrice": 320, "type": "Whiskey"},
		{"itemName": "Old Monk", "costPrice": 150, "type": "Rum"},
		{"itemName": "Double Black Label", "costPrice": 279, "type": "Whiskey"},
		{"itemName": "Sula", "costPrice": 540, "type": "Wine"},
		{"itemName": "Blenders Pride", "costPrice": 700, "type": "Whiskey"},
	}
	cols := []ColumnSpec{
		{ID: "itemName", Sortable: true},
		{ID: "costPrice", Sortable: true, DataType: Number},
		{ID: "type", Sortable: true},
	}

	w, err := Apply(rows, cols, Query{
		Filter: FilterState{Query: "whiskey"},
		Sort:   SortState{Key: "costPrice", Direction: Desc},
		Page:   PageState{Index: 0, Size: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, w.Total)
	assert.Equal(t, 2, w.PageCount)
	assert.Equal(t, []string{"Blenders Pride", "Red Label"}, names(w.Visible, "itemName"))

	prepared := Prepare(rows, cols, Query{
		Filter: FilterState{Query: "whiskey"},
		Sort:   SortState{Key: "costPrice", Direction: Desc},
	})
	assert.Equal(t, []string{"Blenders Pride", "Red Label", "Double Black Label"}, names(prepared, "itemName"))
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		index, total, size, want int
	}{
		{0, 0, 5, 0},
		{3, 0, 5, 0},
		{1, 7, 5, 1},
		{2, 7, 5, 1},
		{1 << 62, 7, 5, 1},
		{4, 10, 5, 1},
		{-1, 7, 5, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampPage(tt.index, tt.total, tt.size), "index %d total %d size %d", tt.index, tt.total, tt.size)
	}
}

func TestParsers(t *testing.T) {
	dt, err := ParseDataType("")
	require.NoError(t, err)
	assert.Equal(t, String, dt)
	dt, err = ParseDataType("Number")
	require.NoError(t, err)
	assert.Equal(t, Number, dt)
	_, err = ParseDataType("money")
	assert.ErrorIs(t, err, ErrUnknownDataType)

	d, err := ParseDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)
	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestSortStateToggle(t *testing.T) {
	var s SortState
	assert.False(t, s.IsSorted())

	s = s.Toggle("cost")
	assert.Equal(t, SortState{Key: "cost", Direction: Asc}, s)
	s = s.Toggle("cost")
	assert.Equal(t, SortState{Key: "cost", Direction: Desc}, s)
	s = s.Toggle("cost")
	assert.Equal(t, Asc, s.Direction)

	s = SortState{Key: "cost", Direction: Desc}.Toggle("name")
	assert.Equal(t, SortState{Key: "name", Direction: Asc}, s)
}

func TestValidateColumns(t *testing.T) {
	assert.NoError(t, ValidateColumns(inventoryColumns()))
	assert.ErrorIs(t, ValidateColumns([]ColumnSpec{{ID: "a"}, {ID: "a"}}), ErrDuplicateColumn)
	assert.ErrorIs(t, ValidateColumns([]ColumnSpec{{ID: " "}}), ErrEmptyColumnID)
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{320, "320"},
		{1.5, "1.5"},
		{float64(390), "390"},
		{true, "true"},
		{uint8(7), "7"},
		{time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), "2024-03-13"},
		{time.Date(2024, 3, 13, 10, 30, 0, 0, time.UTC), "2024-03-13T10:30:00Z"},
		{[]int{1, 2}, "[1 2]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stringify(tt.in), "Stringify(%#v)", tt.in)
	}
}
