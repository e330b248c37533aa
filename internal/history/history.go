// Package history keeps a linear stack of deep grid snapshots with a cursor
// for undo/redo. Snapshots never share structure with live state, so later
// mutation cannot corrupt them.
package history

import "github.com/surprisetalk/gridsheet/internal/grid"

// Snapshot is one immutable capture of grid contents and column metadata.
type Snapshot struct {
	Cells   [][]grid.Cell
	Columns []grid.Column
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Cells:   grid.CloneCells(s.Cells),
		Columns: grid.CloneColumns(s.Columns),
	}
}

// Manager is the linear undo/redo stack. index points at the snapshot
// matching current live state; recording after an undo discards the
// redoable branch.
type Manager struct {
	states []Snapshot
	index  int
}

func NewManager() *Manager {
	return &Manager{index: -1}
}

// Record truncates any redoable entries, appends a deep copy of the snapshot
// and advances the cursor to it.
func (m *Manager) Record(cells [][]grid.Cell, columns []grid.Column) {
	m.states = m.states[:m.index+1]
	m.states = append(m.states, Snapshot{Cells: cells, Columns: columns}.clone())
	m.index = len(m.states) - 1
}

// Undo steps the cursor back and returns the snapshot now pointed to, which
// the caller applies by replacing grid contents wholesale. ok is false at
// the beginning of history.
func (m *Manager) Undo() (Snapshot, bool) {
	if m.index <= 0 {
		return Snapshot{}, false
	}
	m.index--
	return m.states[m.index].clone(), true
}

// Redo steps the cursor forward. ok is false at the end of history.
func (m *Manager) Redo() (Snapshot, bool) {
	if m.index >= len(m.states)-1 {
		return Snapshot{}, false
	}
	m.index++
	return m.states[m.index].clone(), true
}

func (m *Manager) CanUndo() bool { return m.index > 0 }
func (m *Manager) CanRedo() bool { return m.index < len(m.states)-1 }
func (m *Manager) Len() int      { return len(m.states) }
func (m *Manager) Index() int    { return m.index }
