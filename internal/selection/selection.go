// Package selection tracks the primary cell, the transient drag range and the
// explicit set of individually toggled cells.
package selection

import "github.com/surprisetalk/gridsheet/internal/refs"

// Model is the selection state. The explicit set is authoritative; the range
// exists only while a drag or shift-extension is in flight and collapses into
// the set when the gesture ends.
type Model struct {
	primary *refs.Position
	cells   map[refs.Position]struct{}
	rng     *refs.Range
}

func New() *Model {
	return &Model{cells: make(map[refs.Position]struct{})}
}

// Primary returns the primary cell, or ok=false when nothing is selected.
func (m *Model) Primary() (refs.Position, bool) {
	if m.primary == nil {
		return refs.Position{}, false
	}
	return *m.primary, true
}

// Count returns the size of the explicit set.
func (m *Model) Count() int { return len(m.cells) }

// Clear drops all selection state.
func (m *Model) Clear() {
	m.primary = nil
	m.rng = nil
	m.cells = make(map[refs.Position]struct{})
}

// SelectSingle makes pos the only selected cell.
func (m *Model) SelectSingle(pos refs.Position) {
	m.Clear()
	p := pos
	m.primary = &p
	m.cells[pos] = struct{}{}
}

// ExtendRange selects the axis-aligned rectangle between anchor and focus,
// replacing the explicit set with every position inside it. Drag and
// shift-click both resolve through here.
func (m *Model) ExtendRange(anchor, focus refs.Position) {
	a := anchor
	m.primary = &a
	m.rng = nil
	m.cells = make(map[refs.Position]struct{})
	for _, p := range (refs.Range{Start: anchor, End: focus}).Positions() {
		m.cells[p] = struct{}{}
	}
}

// Toggle flips pos in the explicit set without touching the transient range.
func (m *Model) Toggle(pos refs.Position) {
	if _, ok := m.cells[pos]; ok {
		delete(m.cells, pos)
	} else {
		m.cells[pos] = struct{}{}
	}
	if m.primary == nil {
		p := pos
		m.primary = &p
	}
}

// StartDrag anchors a drag gesture at pos.
func (m *Model) StartDrag(pos refs.Position) {
	m.SelectSingle(pos)
	m.rng = &refs.Range{Start: pos, End: pos}
}

// DragTo updates the transient range's focus corner.
func (m *Model) DragTo(pos refs.Position) {
	if m.rng == nil {
		m.StartDrag(pos)
		return
	}
	m.rng.End = pos
}

// EndDrag collapses the transient range into the explicit set.
func (m *Model) EndDrag() {
	if m.rng == nil {
		return
	}
	anchor, focus := m.rng.Start, m.rng.End
	m.ExtendRange(anchor, focus)
}

// Dragging reports whether a drag gesture is in flight.
func (m *Model) Dragging() bool { return m.rng != nil }

// Contains reports whether pos is selected: in the explicit set or inside the
// live drag range.
func (m *Model) Contains(pos refs.Position) bool {
	if _, ok := m.cells[pos]; ok {
		return true
	}
	return m.rng != nil && m.rng.Contains(pos)
}

// Positions returns the explicit set.
func (m *Model) Positions() []refs.Position {
	out := make([]refs.Position, 0, len(m.cells))
	for p := range m.cells {
		out = append(out, p)
	}
	return out
}

// RangeString returns the bounding range of the explicit set in reference
// syntax: a single ref when degenerate, "A1:B3" otherwise. Empty selection
// yields "".
func (m *Model) RangeString() string {
	if len(m.cells) == 0 {
		return ""
	}
	first := true
	var minRow, maxRow, minCol, maxCol int
	for p := range m.cells {
		ord := p.Row.Ord()
		if first {
			minRow, maxRow, minCol, maxCol = ord, ord, p.Col, p.Col
			first = false
			continue
		}
		if ord < minRow {
			minRow = ord
		}
		if ord > maxRow {
			maxRow = ord
		}
		if p.Col < minCol {
			minCol = p.Col
		}
		if p.Col > maxCol {
			maxCol = p.Col
		}
	}
	r := refs.Range{
		Start: refs.Position{Row: refs.FromOrd(minRow), Col: minCol},
		End:   refs.Position{Row: refs.FromOrd(maxRow), Col: maxCol},
	}
	return r.String()
}
