// Package grid owns the cell matrix, column metadata and sizing, and the
// mutation operations every feature goes through.
package grid

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/surprisetalk/gridsheet/internal/refs"
)

const (
	DefaultColumnWidth = 12
	DefaultRowHeight   = 1
	maxColumnWidth     = 30
)

// Alignment is a cell's horizontal alignment override.
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
)

// Format is per-cell presentation state.
type Format struct {
	Bold       bool
	Italic     bool
	Align      Alignment
	Background string
}

// Cell is one addressable unit of the grid. Value is the displayed/computed
// content; Formula keeps the raw source text (including the = sigil) when the
// value came from a formula, so it can be re-edited.
type Cell struct {
	Value   any
	Format  Format
	Formula string
}

// Column metadata. Key is a stable identifier independent of display
// position; the on-screen letter is purely positional.
type Column struct {
	Name string
	Key  string
}

// Store is the grid state: row-major cells plus column metadata and sizing.
// Rows always have exactly len(columns) cells; a mismatch is a programming
// bug, not a runtime error.
type Store struct {
	columns    []Column
	rows       [][]Cell
	colWidths  []int
	rowHeights []int
}

// New builds a store from the external dataset contract: column metadata and
// row items keyed by column key.
func New(columns []Column, items []map[string]any) *Store {
	s := &Store{
		columns:    append([]Column(nil), columns...),
		colWidths:  make([]int, len(columns)),
		rowHeights: make([]int, len(items)),
	}
	for i := range s.colWidths {
		s.colWidths[i] = DefaultColumnWidth
	}
	for i := range s.rowHeights {
		s.rowHeights[i] = DefaultRowHeight
	}
	s.rows = make([][]Cell, len(items))
	for r, item := range items {
		row := make([]Cell, len(columns))
		for c, col := range columns {
			if v, ok := item[col.Key]; ok && v != nil {
				row[c] = Cell{Value: v}
			}
		}
		s.rows[r] = row
	}
	return s
}

func (s *Store) RowCount() int    { return len(s.rows) }
func (s *Store) ColumnCount() int { return len(s.columns) }

// Columns returns a copy of the column metadata.
func (s *Store) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

func (s *Store) Column(i int) Column {
	return s.columns[i]
}

// CellAt returns the cell at a data row/column, or a zero cell when out of
// bounds.
func (s *Store) CellAt(row, col int) Cell {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.columns) {
		return Cell{}
	}
	return s.rows[row][col]
}

// Resolve reads a reference target for the formula engine: the column name
// for the header row, the stored value otherwise. Out-of-bounds and empty
// cells resolve to 0 so arithmetic degrades instead of cascading errors.
func (s *Store) Resolve(pos refs.Position) any {
	if pos.Col < 0 || pos.Col >= len(s.columns) {
		return float64(0)
	}
	if pos.Row.IsHeader() {
		return s.columns[pos.Col].Name
	}
	if pos.Row.Index() < 0 || pos.Row.Index() >= len(s.rows) {
		return float64(0)
	}
	v := s.rows[pos.Row.Index()][pos.Col].Value
	if v == nil {
		return float64(0)
	}
	if str, ok := v.(string); ok && str == "" {
		return float64(0)
	}
	return v
}

// CellPatch is a partial cell update; nil fields are left untouched.
type CellPatch struct {
	Value   *any
	Formula *string
	Format  *Format
}

// SetCell merges patch into the cell, replacing the whole row slice so that
// previously taken history snapshots never alias live state.
func (s *Store) SetCell(row, col int, patch CellPatch) {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.columns) {
		return
	}
	next := make([]Cell, len(s.rows[row]))
	copy(next, s.rows[row])
	cell := next[col]
	if patch.Value != nil {
		cell.Value = *patch.Value
	}
	if patch.Formula != nil {
		cell.Formula = *patch.Formula
	}
	if patch.Format != nil {
		cell.Format = *patch.Format
	}
	next[col] = cell
	s.rows[row] = next
}

// SetValue stores a plain (non-formula) value, clearing any formula source.
func (s *Store) SetValue(row, col int, value any) {
	empty := ""
	s.SetCell(row, col, CellPatch{Value: &value, Formula: &empty})
}

// SetFormula stores an evaluated formula result alongside its source text.
func (s *Store) SetFormula(row, col int, src string, value any) {
	s.SetCell(row, col, CellPatch{Value: &value, Formula: &src})
}

// ClearCell empties value and formula but keeps formatting.
func (s *Store) ClearCell(row, col int) {
	var v any = ""
	empty := ""
	s.SetCell(row, col, CellPatch{Value: &v, Formula: &empty})
}

// UpdateFormat applies fn to the cell's format.
func (s *Store) UpdateFormat(row, col int, fn func(*Format)) {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.columns) {
		return
	}
	f := s.rows[row][col].Format
	fn(&f)
	s.SetCell(row, col, CellPatch{Format: &f})
}

// RenameColumn changes column metadata only; cell data is keyed by position.
func (s *Store) RenameColumn(i int, name string) {
	if i < 0 || i >= len(s.columns) {
		return
	}
	s.columns[i].Name = name
}

// InsertColumn inserts column metadata at index and one empty cell at the
// same index into every row, atomically. The widths array grows by one
// default-width entry.
func (s *Store) InsertColumn(index int, col Column) {
	if index < 0 {
		index = 0
	}
	if index > len(s.columns) {
		index = len(s.columns)
	}
	s.columns = insertAt(s.columns, index, col)
	s.colWidths = insertAt(s.colWidths, index, DefaultColumnWidth)
	for r := range s.rows {
		s.rows[r] = insertAt(s.rows[r], index, Cell{})
	}
	s.assertRectangular()
}

// AppendColumn adds a column at the end with a fresh key.
func (s *Store) AppendColumn() Column {
	key := s.NextColumnKey()
	col := Column{Name: "col" + key, Key: key}
	s.InsertColumn(len(s.columns), col)
	return col
}

// NextColumnKey returns one past the largest numeric key in use. Keys and
// positions can diverge, so counting columns is not a uniqueness argument.
func (s *Store) NextColumnKey() string {
	next := 0
	for _, c := range s.columns {
		if n, err := strconv.Atoi(c.Key); err == nil && n+1 > next {
			next = n + 1
		}
	}
	return strconv.Itoa(next)
}

// InsertRow inserts one fully-empty row at index. The header row is not a
// data row; callers inserting "above" it target index 0.
func (s *Store) InsertRow(index int) {
	if index < 0 {
		index = 0
	}
	if index > len(s.rows) {
		index = len(s.rows)
	}
	row := make([]Cell, len(s.columns))
	s.rows = insertAt(s.rows, index, row)
	s.rowHeights = insertAt(s.rowHeights, index, DefaultRowHeight)
}

// AppendRow adds an empty row at the end and returns its index.
func (s *Store) AppendRow() int {
	s.InsertRow(len(s.rows))
	return len(s.rows) - 1
}

// ReorderColumns moves the column at source to target, shifting the ones in
// between. No-op when source equals target or either is out of range.
func (s *Store) ReorderColumns(source, target int) {
	if source == target ||
		source < 0 || source >= len(s.columns) ||
		target < 0 || target >= len(s.columns) {
		return
	}
	s.columns = moveElem(s.columns, source, target)
	s.colWidths = moveElem(s.colWidths, source, target)
	for r := range s.rows {
		s.rows[r] = moveElem(s.rows[r], source, target)
	}
	s.assertRectangular()
}

// ReorderRows moves the data row at source to target. The header row never
// participates; mixing it with data rows is rejected upstream.
func (s *Store) ReorderRows(source, target int) {
	if source == target ||
		source < 0 || source >= len(s.rows) ||
		target < 0 || target >= len(s.rows) {
		return
	}
	s.rows = moveElem(s.rows, source, target)
	s.rowHeights = moveElem(s.rowHeights, source, target)
}

// SortBy sorts data rows by the given column. Both operands numeric compares
// numerically, anything else falls back to a case-insensitive compare on the
// display string. The sort is stable so ties keep their relative order.
func (s *Store) SortBy(col int, desc bool) {
	if col < 0 || col >= len(s.columns) {
		return
	}
	type keyed struct {
		row    []Cell
		height int
	}
	pairs := make([]keyed, len(s.rows))
	for i := range s.rows {
		pairs[i] = keyed{row: s.rows[i], height: s.rowHeights[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if desc {
			return cellLess(pairs[j].row[col].Value, pairs[i].row[col].Value)
		}
		return cellLess(pairs[i].row[col].Value, pairs[j].row[col].Value)
	})
	for i := range pairs {
		s.rows[i] = pairs[i].row
		s.rowHeights[i] = pairs[i].height
	}
}

func cellLess(a, b any) bool {
	aEmpty, bEmpty := Display(a) == "", Display(b) == ""
	if aEmpty || bEmpty {
		// empty cells sort after everything, ascending
		return bEmpty && !aEmpty
	}
	an, aok := ParseNumber(a)
	bn, bok := ParseNumber(b)
	if aok && bok {
		return an < bn
	}
	return strings.ToLower(Display(a)) < strings.ToLower(Display(b))
}

// IsNumericColumn reports whether every non-empty cell in the column holds a
// numeric value. Column 0 is reserved for labels and is never numeric. This
// is derived on read, never stored.
func (s *Store) IsNumericColumn(col int) bool {
	if col <= 0 || col >= len(s.columns) {
		return false
	}
	for r := range s.rows {
		v := s.rows[r][col].Value
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok && str == "" {
			continue
		}
		if !isNumericValue(v) {
			return false
		}
	}
	return true
}

// MatchingRows returns the indices of rows whose display text contains the
// filter, case-insensitively. An empty filter matches every row.
func (s *Store) MatchingRows(filter string) []int {
	out := make([]int, 0, len(s.rows))
	needle := strings.ToLower(strings.TrimSpace(filter))
	for r := range s.rows {
		if needle == "" || rowMatches(s.rows[r], needle) {
			out = append(out, r)
		}
	}
	return out
}

func rowMatches(row []Cell, needle string) bool {
	for c := range row {
		if strings.Contains(strings.ToLower(Display(row[c].Value)), needle) {
			return true
		}
	}
	return false
}

func (s *Store) ColumnWidth(i int) int {
	if i < 0 || i >= len(s.colWidths) {
		return DefaultColumnWidth
	}
	return s.colWidths[i]
}

func (s *Store) SetColumnWidth(i, w int) {
	if i < 0 || i >= len(s.colWidths) {
		return
	}
	if w < 1 {
		w = 1
	}
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	s.colWidths[i] = w
}

// FitColumnWidths sizes each column to its header and a sample of its cells,
// capped at maxColumnWidth.
func (s *Store) FitColumnWidths() {
	for i, col := range s.columns {
		w := len(col.Name)
		if w < 4 {
			w = 4
		}
		s.colWidths[i] = w
	}
	sample := len(s.rows)
	if sample > 100 {
		sample = 100
	}
	for _, row := range s.rows[:sample] {
		for i := range s.columns {
			if n := len(Display(row[i].Value)); n > s.colWidths[i] {
				s.colWidths[i] = n
			}
		}
	}
	for i := range s.colWidths {
		if s.colWidths[i] > maxColumnWidth {
			s.colWidths[i] = maxColumnWidth
		}
	}
}

// RecalcFormulas re-evaluates every formula cell through eval and stores the
// result. eval receives the raw source with the sigil stripped.
func (s *Store) RecalcFormulas(eval func(src string) any) {
	for r := range s.rows {
		for c := range s.rows[r] {
			src := s.rows[r][c].Formula
			if src == "" {
				continue
			}
			v := eval(strings.TrimPrefix(src, "="))
			s.SetCell(r, c, CellPatch{Value: &v})
		}
	}
}

// CloneCells deep-copies a cell matrix.
func CloneCells(rows [][]Cell) [][]Cell {
	out := make([][]Cell, len(rows))
	for i := range rows {
		out[i] = append([]Cell(nil), rows[i]...)
	}
	return out
}

// CloneColumns copies column metadata.
func CloneColumns(cols []Column) []Column {
	return append([]Column(nil), cols...)
}

// SnapshotCells returns a deep copy of the cell matrix.
func (s *Store) SnapshotCells() [][]Cell {
	return CloneCells(s.rows)
}

// Restore replaces the store's contents wholesale from a snapshot.
func (s *Store) Restore(cells [][]Cell, columns []Column) {
	s.rows = CloneCells(cells)
	s.columns = CloneColumns(columns)
	for len(s.colWidths) < len(s.columns) {
		s.colWidths = append(s.colWidths, DefaultColumnWidth)
	}
	s.colWidths = s.colWidths[:len(s.columns)]
	for len(s.rowHeights) < len(s.rows) {
		s.rowHeights = append(s.rowHeights, DefaultRowHeight)
	}
	s.rowHeights = s.rowHeights[:len(s.rows)]
	s.assertRectangular()
}

func (s *Store) assertRectangular() {
	for r := range s.rows {
		if len(s.rows[r]) != len(s.columns) {
			panic(fmt.Sprintf("grid: row %d has %d cells, want %d", r, len(s.rows[r]), len(s.columns)))
		}
	}
}

func insertAt[T any](s []T, i int, v T) []T {
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func moveElem[T any](s []T, from, to int) []T {
	v := s[from]
	s = append(s[:from], s[from+1:]...)
	s = append(s, v)
	copy(s[to+1:], s[to:len(s)-1])
	s[to] = v
	return s
}

// Display renders a stored value the way the grid shows it.
func Display(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// ParseNumber coerces a value to float64, accepting numeric types and
// numeric-looking strings ($ and , stripped).
func ParseNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(x, "$"), ",", ""))
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isNumericValue(v any) bool {
	switch v.(type) {
	case float64, int64, int, uint64:
		return true
	default:
		return false
	}
}

// ParseInput converts edited text to a stored value: numbers become float64,
// everything else stays a string.
func ParseInput(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return s
}
