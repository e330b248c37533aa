package history

import (
	"reflect"
	"testing"

	"github.com/surprisetalk/gridsheet/internal/grid"
)

func snapshotOf(values ...string) ([][]grid.Cell, []grid.Column) {
	cells := make([][]grid.Cell, len(values))
	for i, v := range values {
		cells[i] = []grid.Cell{{Value: v}}
	}
	return cells, []grid.Column{{Name: "c", Key: "0"}}
}

func TestUndoRedoIdempotence(t *testing.T) {
	m := NewManager()
	for _, v := range []string{"one", "two", "three"} {
		cells, cols := snapshotOf(v)
		m.Record(cells, cols)
	}

	pre := m.states[m.index].clone()
	undone, ok := m.Undo()
	if !ok {
		t.Fatal("undo failed")
	}
	if undone.Cells[0][0].Value != "two" {
		t.Fatalf("undo value = %v, want two", undone.Cells[0][0].Value)
	}
	redone, ok := m.Redo()
	if !ok {
		t.Fatal("redo failed")
	}
	if !reflect.DeepEqual(redone, pre) {
		t.Fatalf("redo = %+v, want %+v", redone, pre)
	}
}

func TestUndoAtBeginning(t *testing.T) {
	m := NewManager()
	if _, ok := m.Undo(); ok {
		t.Fatal("undo on empty history should be a no-op")
	}
	cells, cols := snapshotOf("initial")
	m.Record(cells, cols)
	if _, ok := m.Undo(); ok {
		t.Fatal("cannot undo past the initial snapshot")
	}
	if _, ok := m.Redo(); ok {
		t.Fatal("nothing to redo")
	}
}

func TestRecordDiscardsRedoBranch(t *testing.T) {
	m := NewManager()
	for _, v := range []string{"a", "b", "c"} {
		cells, cols := snapshotOf(v)
		m.Record(cells, cols)
	}
	if _, ok := m.Undo(); !ok {
		t.Fatal("undo failed")
	}
	if !m.CanRedo() {
		t.Fatal("expected redoable state after undo")
	}
	cells, cols := snapshotOf("branch")
	m.Record(cells, cols)
	if m.CanRedo() {
		t.Fatal("record must discard the redo branch")
	}
	if m.Len() != 3 {
		t.Fatalf("len = %d, want 3", m.Len())
	}
	snap, ok := m.Undo()
	if !ok || snap.Cells[0][0].Value != "b" {
		t.Fatalf("undo after branch = %+v ok=%v, want b", snap, ok)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	m := NewManager()
	cells, cols := snapshotOf("original")
	m.Record(cells, cols)
	// mutate the inputs after recording
	cells[0][0].Value = "mutated"
	cols[0].Name = "mutated"

	cells2, cols2 := snapshotOf("second")
	m.Record(cells2, cols2)
	snap, ok := m.Undo()
	if !ok {
		t.Fatal("undo failed")
	}
	if snap.Cells[0][0].Value != "original" || snap.Columns[0].Name != "c" {
		t.Fatalf("snapshot aliased live state: %+v", snap)
	}
	// mutating the returned snapshot cannot touch stored history
	snap.Cells[0][0].Value = "clobbered"
	again, _ := m.Redo()
	if again.Cells[0][0].Value != "second" {
		t.Fatal("redo returned corrupted snapshot")
	}
	back, _ := m.Undo()
	if back.Cells[0][0].Value != "original" {
		t.Fatal("stored snapshot mutated through returned copy")
	}
}
