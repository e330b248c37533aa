// Package refs is the coordinate arithmetic for the grid: column letter
// encoding, "A1"-style cell references and range expansion.
//
// Row 1 in reference syntax is the header row (column names); row n (n >= 2)
// is data row n-2. The header row never lives in the cell matrix, so it gets
// its own Row variant instead of a bare -1.
package refs

import (
	"regexp"
	"strconv"
)

// Row addresses either the header row or a zero-based data row.
type Row struct {
	index  int
	header bool
}

// Header returns the header row.
func Header() Row { return Row{header: true} }

// Data returns the data row at the given zero-based index.
func Data(index int) Row { return Row{index: index} }

func (r Row) IsHeader() bool { return r.header }

// Index returns the zero-based data row index. Only meaningful when
// IsHeader() is false.
func (r Row) Index() int { return r.index }

// Ord returns the row's position in top-to-bottom order, with the header
// at -1. Used for min/max normalization and the canonical "row,col" key.
func (r Row) Ord() int {
	if r.header {
		return -1
	}
	return r.index
}

// FromOrd is the inverse of Ord.
func FromOrd(ord int) Row {
	if ord < 0 {
		return Header()
	}
	return Data(ord)
}

// Position is a single cell address.
type Position struct {
	Row Row
	Col int
}

// Key returns the canonical "row,col" string, header row as -1.
func (p Position) Key() string {
	return strconv.Itoa(p.Row.Ord()) + "," + strconv.Itoa(p.Col)
}

// Ref returns the "A1"-style reference for the position.
func (p Position) Ref() string {
	return ColumnLetter(p.Col) + strconv.Itoa(p.Row.Ord()+2)
}

// Range is an anchor/focus pair. Start and End are not necessarily min/max;
// call Normalize before treating them as corners.
type Range struct {
	Start Position
	End   Position
}

// Normalize returns the range with Start at the top-left and End at the
// bottom-right, normalizing both axes independently.
func (r Range) Normalize() Range {
	minRow, maxRow := r.Start.Row.Ord(), r.End.Row.Ord()
	if minRow > maxRow {
		minRow, maxRow = maxRow, minRow
	}
	minCol, maxCol := r.Start.Col, r.End.Col
	if minCol > maxCol {
		minCol, maxCol = maxCol, minCol
	}
	return Range{
		Start: Position{Row: FromOrd(minRow), Col: minCol},
		End:   Position{Row: FromOrd(maxRow), Col: maxCol},
	}
}

// Contains reports whether pos lies inside the normalized range.
func (r Range) Contains(pos Position) bool {
	n := r.Normalize()
	return pos.Row.Ord() >= n.Start.Row.Ord() && pos.Row.Ord() <= n.End.Row.Ord() &&
		pos.Col >= n.Start.Col && pos.Col <= n.End.Col
}

// Positions expands the normalized range to every position in the rectangle,
// row-major.
func (r Range) Positions() []Position {
	n := r.Normalize()
	out := make([]Position, 0, (n.End.Row.Ord()-n.Start.Row.Ord()+1)*(n.End.Col-n.Start.Col+1))
	for row := n.Start.Row.Ord(); row <= n.End.Row.Ord(); row++ {
		for col := n.Start.Col; col <= n.End.Col; col++ {
			out = append(out, Position{Row: FromOrd(row), Col: col})
		}
	}
	return out
}

// String renders the range as "A1:B3", or a single ref when degenerate.
func (r Range) String() string {
	n := r.Normalize()
	if n.Start == n.End {
		return n.Start.Ref()
	}
	return n.Start.Ref() + ":" + n.End.Ref()
}

// ColumnLetter converts a zero-based column index to its letter label using
// bijective base-26 (A=0, Z=25, AA=26). Plain base-26 is ambiguous for
// multi-letter labels.
func ColumnLetter(index int) string {
	if index < 0 {
		return ""
	}
	var buf [8]byte
	i := len(buf)
	for index >= 0 {
		i--
		buf[i] = byte('A' + index%26)
		index = index/26 - 1
	}
	return string(buf[i:])
}

// ColumnIndex is the inverse of ColumnLetter. Returns -1 for input outside
// A-Z.
func ColumnIndex(letters string) int {
	if letters == "" {
		return -1
	}
	result := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

var refRe = regexp.MustCompile(`^([A-Z]+)(\d+)$`)

// Parse converts an "A1"-style reference to a position. Row 1 is the header
// row; row n (n >= 2) is data row n-2. ok is false on malformed input,
// including row 0.
func Parse(ref string) (Position, bool) {
	m := refRe.FindStringSubmatch(ref)
	if m == nil {
		return Position{}, false
	}
	rowNum, err := strconv.Atoi(m[2])
	if err != nil || rowNum < 1 {
		return Position{}, false
	}
	col := ColumnIndex(m[1])
	if col < 0 {
		return Position{}, false
	}
	return Position{Row: FromOrd(rowNum - 2), Col: col}, true
}

// RangePositions expands a reference or "A1:B3"-style range string to the
// positions it covers. Reversed corners are normalized. Malformed input
// yields an empty slice, never an error.
func RangePositions(s string) []Position {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			start, ok := Parse(s[:i])
			if !ok {
				return nil
			}
			end, ok := Parse(s[i+1:])
			if !ok {
				return nil
			}
			return Range{Start: start, End: end}.Positions()
		}
	}
	pos, ok := Parse(s)
	if !ok {
		return nil
	}
	return []Position{pos}
}
