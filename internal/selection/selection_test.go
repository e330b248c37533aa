package selection

import (
	"testing"

	"github.com/surprisetalk/gridsheet/internal/refs"
)

func pos(row, col int) refs.Position {
	return refs.Position{Row: refs.FromOrd(row), Col: col}
}

func TestSelectSingle(t *testing.T) {
	m := New()
	m.Toggle(pos(3, 3))
	m.SelectSingle(pos(0, 1))
	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}
	p, ok := m.Primary()
	if !ok || p != pos(0, 1) {
		t.Fatalf("primary = %+v ok=%v", p, ok)
	}
	if m.Contains(pos(3, 3)) {
		t.Fatal("old selection survived SelectSingle")
	}
}

func TestExtendRangeRectangle(t *testing.T) {
	m := New()
	m.ExtendRange(pos(2, 2), pos(0, 0))
	if m.Count() != 9 {
		t.Fatalf("count = %d, want 9", m.Count())
	}
	for r := 0; r <= 2; r++ {
		for c := 0; c <= 2; c++ {
			if !m.Contains(pos(r, c)) {
				t.Fatalf("missing (%d,%d)", r, c)
			}
		}
	}
	if m.Contains(pos(3, 0)) {
		t.Fatal("selection leaked outside rectangle")
	}
}

func TestToggle(t *testing.T) {
	m := New()
	m.Toggle(pos(1, 1))
	m.Toggle(pos(2, 2))
	if m.Count() != 2 {
		t.Fatalf("count = %d, want 2", m.Count())
	}
	m.Toggle(pos(1, 1))
	if m.Contains(pos(1, 1)) {
		t.Fatal("toggle did not remove cell")
	}
	if !m.Contains(pos(2, 2)) {
		t.Fatal("toggle removed the wrong cell")
	}
}

func TestDragLifecycle(t *testing.T) {
	m := New()
	m.StartDrag(pos(0, 0))
	m.DragTo(pos(1, 1))
	if !m.Dragging() {
		t.Fatal("expected drag in flight")
	}
	// live feedback: inside transient range but not yet in the explicit set
	if !m.Contains(pos(1, 0)) {
		t.Fatal("live drag range not reflected by Contains")
	}
	if got := len(m.Positions()); got != 1 {
		t.Fatalf("explicit set has %d cells mid-drag, want 1", got)
	}
	m.EndDrag()
	if m.Dragging() {
		t.Fatal("drag still in flight after EndDrag")
	}
	if m.Count() != 4 {
		t.Fatalf("collapsed set has %d cells, want 4", m.Count())
	}
}

func TestRangeString(t *testing.T) {
	m := New()
	if got := m.RangeString(); got != "" {
		t.Fatalf("empty selection range = %q", got)
	}
	m.SelectSingle(pos(0, 0))
	if got := m.RangeString(); got != "A2" {
		t.Fatalf("single range = %q, want A2", got)
	}
	m.Toggle(pos(1, 1))
	if got := m.RangeString(); got != "A2:B3" {
		t.Fatalf("range = %q, want A2:B3", got)
	}
	// header participates with its sentinel row
	m.Toggle(pos(-1, 0))
	if got := m.RangeString(); got != "A1:B3" {
		t.Fatalf("range = %q, want A1:B3", got)
	}
}
