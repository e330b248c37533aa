package grid

import (
	"testing"

	"github.com/surprisetalk/gridsheet/internal/refs"
)

func testStore() *Store {
	cols := []Column{
		{Name: "Product", Key: "0"},
		{Name: "2020", Key: "1"},
	}
	items := []map[string]any{
		{"0": "A", "1": float64(10)},
		{"0": "B", "1": float64(20)},
		{"0": "C", "1": float64(30)},
	}
	return New(cols, items)
}

func TestNewShape(t *testing.T) {
	s := testStore()
	if s.RowCount() != 3 || s.ColumnCount() != 2 {
		t.Fatalf("got %dx%d, want 3x2", s.RowCount(), s.ColumnCount())
	}
	if got := s.CellAt(1, 0).Value; got != "B" {
		t.Fatalf("cell (1,0) = %v, want B", got)
	}
}

func TestSetCellCopyOnWrite(t *testing.T) {
	s := testStore()
	before := s.SnapshotCells()
	s.SetValue(0, 1, float64(99))
	if got := s.CellAt(0, 1).Value; got != float64(99) {
		t.Fatalf("cell = %v, want 99", got)
	}
	if before[0][1].Value != float64(10) {
		t.Fatal("snapshot mutated by live edit")
	}
	// formula cleared on plain value write
	s.SetFormula(0, 1, "=SUM(B2:B4)", float64(60))
	s.SetValue(0, 1, float64(5))
	if s.CellAt(0, 1).Formula != "" {
		t.Fatal("formula not cleared by plain value write")
	}
}

func TestResolve(t *testing.T) {
	s := testStore()
	if got := s.Resolve(refs.Position{Row: refs.Header(), Col: 0}); got != "Product" {
		t.Fatalf("header resolve = %v", got)
	}
	if got := s.Resolve(refs.Position{Row: refs.Data(1), Col: 1}); got != float64(20) {
		t.Fatalf("data resolve = %v", got)
	}
	if got := s.Resolve(refs.Position{Row: refs.Data(99), Col: 0}); got != float64(0) {
		t.Fatalf("out-of-bounds resolve = %v, want 0", got)
	}
	if got := s.Resolve(refs.Position{Row: refs.Data(0), Col: 99}); got != float64(0) {
		t.Fatalf("out-of-bounds column resolve = %v, want 0", got)
	}
}

func TestInsertColumn(t *testing.T) {
	s := testStore()
	s.InsertColumn(1, Column{Name: "2021", Key: "x"})
	if s.ColumnCount() != 3 {
		t.Fatalf("column count = %d, want 3", s.ColumnCount())
	}
	if got := s.Column(1).Name; got != "2021" {
		t.Fatalf("column 1 = %q", got)
	}
	for r := 0; r < s.RowCount(); r++ {
		if got := s.CellAt(r, 1).Value; got != nil {
			t.Fatalf("row %d inserted cell = %v, want empty", r, got)
		}
	}
	// old column shifted intact
	if got := s.CellAt(0, 2).Value; got != float64(10) {
		t.Fatalf("shifted cell = %v, want 10", got)
	}
	if got := s.ColumnWidth(1); got != DefaultColumnWidth {
		t.Fatalf("inserted width = %d, want default", got)
	}
}

func TestNextColumnKeySkipsGaps(t *testing.T) {
	s := New([]Column{{Name: "a", Key: "0"}, {Name: "b", Key: "7"}, {Name: "c", Key: "x"}}, nil)
	if got := s.NextColumnKey(); got != "8" {
		t.Fatalf("next key = %q, want 8", got)
	}
	col := s.AppendColumn()
	if col.Key != "8" {
		t.Fatalf("appended key = %q, want 8", col.Key)
	}
	// keys stay unique even when positions and keys diverge
	for i := 0; i < s.ColumnCount(); i++ {
		for j := i + 1; j < s.ColumnCount(); j++ {
			if s.Column(i).Key == s.Column(j).Key {
				t.Fatalf("duplicate key %q at %d and %d", s.Column(i).Key, i, j)
			}
		}
	}
}

func TestInsertRow(t *testing.T) {
	s := testStore()
	s.InsertRow(1)
	if s.RowCount() != 4 {
		t.Fatalf("row count = %d, want 4", s.RowCount())
	}
	for c := 0; c < s.ColumnCount(); c++ {
		if got := s.CellAt(1, c).Value; got != nil {
			t.Fatalf("inserted row cell %d = %v, want empty", c, got)
		}
	}
	if got := s.CellAt(2, 0).Value; got != "B" {
		t.Fatalf("shifted row cell = %v, want B", got)
	}
}

func TestReorderColumnsNoop(t *testing.T) {
	s := testStore()
	before := s.SnapshotCells()
	s.ReorderColumns(1, 1)
	s.ReorderColumns(-1, 0)
	s.ReorderColumns(0, 5)
	after := s.SnapshotCells()
	for r := range before {
		for c := range before[r] {
			if before[r][c] != after[r][c] {
				t.Fatal("no-op reorder changed state")
			}
		}
	}
}

func TestReorderColumnsMoves(t *testing.T) {
	s := testStore()
	s.ReorderColumns(0, 1)
	if got := s.Column(0).Name; got != "2020" {
		t.Fatalf("column 0 = %q, want 2020", got)
	}
	if got := s.CellAt(0, 1).Value; got != "A" {
		t.Fatalf("cell (0,1) = %v, want A", got)
	}
}

func TestReorderRows(t *testing.T) {
	s := testStore()
	s.ReorderRows(2, 0)
	if got := s.CellAt(0, 0).Value; got != "C" {
		t.Fatalf("row 0 = %v, want C", got)
	}
	if got := s.CellAt(1, 0).Value; got != "A" {
		t.Fatalf("row 1 = %v, want A", got)
	}
}

func TestSortByNumericAndStability(t *testing.T) {
	cols := []Column{{Name: "p", Key: "0"}, {Name: "v", Key: "1"}}
	items := []map[string]any{
		{"0": "B", "1": float64(2)},
		{"0": "A", "1": float64(1)},
		{"0": "C"},
	}
	s := New(cols, items)
	s.SortBy(1, false)
	want := []string{"A", "B", "C"}
	for i, w := range want {
		if got := s.CellAt(i, 0).Value; got != w {
			t.Fatalf("asc row %d = %v, want %s", i, got, w)
		}
	}
	// reproducible: sort again, same result
	s.SortBy(1, false)
	for i, w := range want {
		if got := s.CellAt(i, 0).Value; got != w {
			t.Fatalf("re-sort row %d = %v, want %s", i, got, w)
		}
	}
	s.SortBy(1, true)
	if got := s.CellAt(0, 0).Value; got == "A" {
		t.Fatal("desc sort did not reorder")
	}
}

func TestSortByLexicographic(t *testing.T) {
	cols := []Column{{Name: "p", Key: "0"}, {Name: "v", Key: "1"}}
	items := []map[string]any{
		{"0": "x", "1": "banana"},
		{"0": "y", "1": "Apple"},
	}
	s := New(cols, items)
	s.SortBy(1, false)
	if got := s.CellAt(0, 1).Value; got != "Apple" {
		t.Fatalf("row 0 = %v, want Apple (case-insensitive)", got)
	}
}

func TestIsNumericColumn(t *testing.T) {
	s := testStore()
	if s.IsNumericColumn(0) {
		t.Fatal("column 0 is reserved for labels")
	}
	if !s.IsNumericColumn(1) {
		t.Fatal("column 1 should be numeric")
	}
	s.SetValue(1, 1, "abc")
	if s.IsNumericColumn(1) {
		t.Fatal("column with string cell should not be numeric")
	}
	s.SetValue(1, 1, "")
	if !s.IsNumericColumn(1) {
		t.Fatal("empty cells do not break numeric detection")
	}
}

func TestMatchingRows(t *testing.T) {
	s := testStore()
	if got := s.MatchingRows(""); len(got) != 3 {
		t.Fatalf("empty filter matched %d rows, want 3", len(got))
	}
	got := s.MatchingRows("b")
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("filter b matched %v, want [1]", got)
	}
	got = s.MatchingRows("20")
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("filter 20 matched %v, want [1]", got)
	}
}

func TestRestoreReplacesWholesale(t *testing.T) {
	s := testStore()
	cells := s.SnapshotCells()
	cols := s.Columns()
	s.SetValue(0, 0, "mutated")
	s.InsertColumn(0, Column{Name: "extra", Key: "e"})
	s.Restore(cells, cols)
	if s.ColumnCount() != 2 {
		t.Fatalf("column count = %d after restore, want 2", s.ColumnCount())
	}
	if got := s.CellAt(0, 0).Value; got != "A" {
		t.Fatalf("cell = %v after restore, want A", got)
	}
}

func TestRecalcFormulas(t *testing.T) {
	s := testStore()
	s.SetFormula(0, 1, "=SUM(B2:B4)", float64(0))
	s.RecalcFormulas(func(src string) any {
		if src != "SUM(B2:B4)" {
			t.Fatalf("eval src = %q", src)
		}
		return float64(60)
	})
	if got := s.CellAt(0, 1).Value; got != float64(60) {
		t.Fatalf("recalced value = %v, want 60", got)
	}
	if got := s.CellAt(0, 1).Formula; got != "=SUM(B2:B4)" {
		t.Fatalf("formula source lost: %q", got)
	}
}

func TestDisplayAndParse(t *testing.T) {
	if got := Display(float64(30)); got != "30" {
		t.Fatalf("Display(30.0) = %q", got)
	}
	if got := Display(float64(1.5)); got != "1.5" {
		t.Fatalf("Display(1.5) = %q", got)
	}
	if v, ok := ParseNumber("$1,200.50"); !ok || v != 1200.5 {
		t.Fatalf("ParseNumber($1,200.50) = %v %v", v, ok)
	}
	if _, ok := ParseNumber("abc"); ok {
		t.Fatal("ParseNumber(abc) should fail")
	}
	if got := ParseInput("42"); got != float64(42) {
		t.Fatalf("ParseInput(42) = %v", got)
	}
	if got := ParseInput("hello"); got != "hello" {
		t.Fatalf("ParseInput(hello) = %v", got)
	}
}
