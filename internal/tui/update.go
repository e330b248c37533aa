package tui

import (
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/surprisetalk/gridsheet/internal/dataset"
	"github.com/surprisetalk/gridsheet/internal/formula"
	"github.com/surprisetalk/gridsheet/internal/grid"
	"github.com/surprisetalk/gridsheet/internal/refs"
)

// numericSeeds are the runes allowed to start an edit on a numeric column.
const numericSeeds = "0123456789.-="

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Back):
		if m.sel.Count() > 1 {
			m.setCursor(m.cy, m.cx, false)
			return m, nil
		}
		if m.dataDir == "" {
			return m, tea.Quit
		}
		m.view = viewLibrary
		m.refreshLibrary()
		return m, nil

	case key.Matches(msg, k.Up):
		m.moveCursor(-1, 0, false)
	case key.Matches(msg, k.Down):
		m.moveCursor(1, 0, false)
	case key.Matches(msg, k.Left):
		m.moveCursor(0, -1, false)
	case key.Matches(msg, k.Right):
		m.moveCursor(0, 1, false)

	case key.Matches(msg, k.ExtendUp):
		m.moveCursor(-1, 0, true)
	case key.Matches(msg, k.ExtendDown):
		m.moveCursor(1, 0, true)
	case key.Matches(msg, k.ExtendLeft):
		m.moveCursor(0, -1, true)
	case key.Matches(msg, k.ExtendRight):
		m.moveCursor(0, 1, true)

	case key.Matches(msg, k.JumpUp):
		m.jumpCursor(-1, 0)
	case key.Matches(msg, k.JumpDown):
		m.jumpCursor(1, 0)
	case key.Matches(msg, k.JumpLeft):
		m.jumpCursor(0, -1)
	case key.Matches(msg, k.JumpRight):
		m.jumpCursor(0, 1)

	case key.Matches(msg, k.RowStart):
		m.setCursor(m.cy, 0, false)
	case key.Matches(msg, k.RowEnd):
		m.setCursor(m.cy, m.store.ColumnCount()-1, false)
	case key.Matches(msg, k.GridStart):
		m.setCursor(-1, 0, false)
	case key.Matches(msg, k.GridEnd):
		m.setCursor(len(m.proj)-1, m.store.ColumnCount()-1, false)

	case key.Matches(msg, k.PageUp):
		cy := m.cy - m.cfg.PageJump
		if cy < 0 && len(m.proj) > 0 {
			cy = 0
		}
		if len(m.proj) == 0 {
			cy = -1
		}
		m.setCursor(cy, m.cx, false)
	case key.Matches(msg, k.PageDown):
		cy := m.cy + m.cfg.PageJump
		if cy >= len(m.proj) {
			cy = len(m.proj) - 1
		}
		m.setCursor(cy, m.cx, false)

	case key.Matches(msg, k.NextCell):
		cy, cx := m.cy, m.cx+1
		if cx >= m.store.ColumnCount() {
			cx = 0
			if cy < len(m.proj)-1 {
				cy++
			}
		}
		m.setCursor(cy, cx, false)
	case key.Matches(msg, k.PrevCell):
		cy, cx := m.cy, m.cx-1
		if cx < 0 {
			cx = m.store.ColumnCount() - 1
			if cy > -1 {
				cy--
			}
		}
		m.setCursor(cy, cx, false)

	case key.Matches(msg, k.Edit):
		m.startEdit("", false)
	case key.Matches(msg, k.Clear):
		m.clearSelected()
	case key.Matches(msg, k.ToggleSelect):
		m.sel.Toggle(m.cursorPos())

	case key.Matches(msg, k.Filter):
		m.mode = modeFilter
		m.filterInput.SetValue(m.filter)
		m.filterInput.CursorEnd()
		m.filterInput.Focus()

	case key.Matches(msg, k.SortAsc):
		m.sortBy(false)
	case key.Matches(msg, k.SortDesc):
		m.sortBy(true)

	case key.Matches(msg, k.Undo):
		if s, ok := m.hist.Undo(); ok {
			m.applySnapshot(s)
		}
	case key.Matches(msg, k.Redo):
		if s, ok := m.hist.Redo(); ok {
			m.applySnapshot(s)
		}

	case key.Matches(msg, k.Bold):
		m.toggleFormat(func(f *grid.Format) { f.Bold = !f.Bold })
	case key.Matches(msg, k.Italic):
		m.toggleFormat(func(f *grid.Format) { f.Italic = !f.Italic })

	case key.Matches(msg, k.AppendRow):
		m.appendRow()
	case key.Matches(msg, k.AppendCol):
		m.appendColumn()
	case key.Matches(msg, k.InsertRowBelow):
		m.insertRow(1)
	case key.Matches(msg, k.InsertRowAbove):
		m.insertRow(0)
	case key.Matches(msg, k.InsertCol):
		m.insertColumn()
	case key.Matches(msg, k.MoveColLeft):
		m.moveColumn(-1)
	case key.Matches(msg, k.MoveColRight):
		m.moveColumn(1)
	case key.Matches(msg, k.MoveRowUp):
		m.moveRow(-1)
	case key.Matches(msg, k.MoveRowDown):
		m.moveRow(1)

	case key.Matches(msg, k.Save):
		m.save()

	default:
		r := []rune(msg.String())
		if len(r) == 1 && unicode.IsPrint(r[0]) {
			if m.cy >= 0 && m.store.IsNumericColumn(m.cx) && !strings.ContainsRune(numericSeeds, r[0]) {
				return m, nil
			}
			m.startEdit(string(r), true)
		}
	}
	return m, nil
}

// --- edit mode ---

// startEdit enters edit mode on the cursor cell. With replace set, seed
// becomes the buffer; otherwise the buffer is the current contents, the
// formula source when the cell has one.
func (m *Model) startEdit(seed string, replace bool) {
	pos := m.cursorPos()
	m.editTarget = pos
	cur := seed
	if !replace {
		if pos.Row.IsHeader() {
			cur = m.store.Column(pos.Col).Name
		} else {
			cell := m.store.CellAt(pos.Row.Index(), pos.Col)
			if cell.Formula != "" {
				cur = cell.Formula
			} else {
				cur = grid.Display(cell.Value)
			}
		}
	}
	m.editInput.SetValue(cur)
	m.editInput.CursorEnd()
	m.editInput.Focus()
	m.mode = modeEdit
}

func (m *Model) commitEdit() {
	text := m.editInput.Value()
	pos := m.editTarget
	if pos.Row.IsHeader() {
		m.store.RenameColumn(pos.Col, text)
		if m.doc != nil {
			m.doc.RenameColumn(m.store.Column(pos.Col).Key, text)
		}
		m.commitMutation()
	} else {
		row := pos.Row.Index()
		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "=") {
			val := formula.Eval(strings.TrimPrefix(trimmed, "="), m.store)
			m.store.SetFormula(row, pos.Col, trimmed, val)
		} else {
			m.store.SetValue(row, pos.Col, grid.ParseInput(text))
		}
		m.commitMutation()
		m.mirrorValue(row, pos.Col)
	}
	m.mode = modeNormal
	m.editInput.Blur()
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.commitEdit()
		if m.cy < len(m.proj)-1 {
			m.setCursor(m.cy+1, m.cx, false)
		} else {
			m.setCursor(m.cy, m.cx, false)
		}
	case "tab":
		m.commitEdit()
		cy, cx := m.cy, m.cx+1
		if cx >= m.store.ColumnCount() {
			cx = 0
			if cy < len(m.proj)-1 {
				cy++
			}
		}
		m.setCursor(cy, cx, false)
	case "esc":
		m.mode = modeNormal
		m.editInput.Blur()
	default:
		var cmd tea.Cmd
		m.editInput, cmd = m.editInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// --- filter mode ---

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.filter = m.filterInput.Value()
		m.mode = modeNormal
		m.filterInput.Blur()
		m.refreshProjection()
	case "esc":
		m.filter = ""
		m.filterInput.Reset()
		m.mode = modeNormal
		m.filterInput.Blur()
		m.refreshProjection()
	default:
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.filterSeq++
		seq := m.filterSeq
		delay := m.cfg.FilterDebounce()
		return m, tea.Batch(cmd, tea.Tick(delay, func(time.Time) tea.Msg {
			return filterDebounceMsg{seq: seq}
		}))
	}
	return m, nil
}

// --- mouse ---

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll -= 3
		m.clampScroll()
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll += 3
		m.clampScroll()
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		pos, ok := m.hitTest(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.moveCursorTo(pos)
		switch {
		case msg.Shift:
			m.sel.ExtendRange(m.anchor, pos)
		case msg.Ctrl:
			m.sel.Toggle(pos)
		default:
			m.anchor = pos
			m.sel.StartDrag(pos)
		}
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionMotion:
		if pos, ok := m.hitTest(msg.X, msg.Y); ok && m.sel.Dragging() {
			m.moveCursorTo(pos)
			m.sel.DragTo(pos)
		}
	case msg.Action == tea.MouseActionRelease:
		m.sel.EndDrag()
	}
	return m, nil
}

// moveCursorTo points the cursor at a grid position without touching the
// selection.
func (m *Model) moveCursorTo(pos refs.Position) {
	if pos.Row.IsHeader() {
		m.cy = -1
	} else if vi := m.projIndex(pos.Row.Index()); vi >= 0 {
		m.cy = vi
	}
	m.cx = pos.Col
	m.ensureVisible()
}

// hitTest maps screen coordinates to a grid position. Line 1 is the header
// row, data rows start at line 3.
func (m Model) hitTest(x, y int) (refs.Position, bool) {
	ci, ok := m.hitColumn(x)
	if !ok {
		return refs.Position{}, false
	}
	if y == 1 {
		return refs.Position{Row: refs.Header(), Col: ci}, true
	}
	if y < 3 || y-3 >= m.dataHeight() {
		return refs.Position{}, false
	}
	vi := m.scroll + (y - 3)
	if vi >= len(m.proj) {
		return refs.Position{}, false
	}
	return refs.Position{Row: refs.Data(m.proj[vi]), Col: ci}, true
}

func (m Model) hitColumn(x int) (int, bool) {
	visStart, visEnd := m.visibleColRange()
	xo := 0
	for ci := visStart; ci < visEnd; ci++ {
		w := m.store.ColumnWidth(ci) + 2 // cell padding
		if x >= xo && x < xo+w {
			return ci, true
		}
		xo += w + 1 // separator
	}
	return 0, false
}

// --- structural mutations ---

func (m *Model) clearSelected() {
	var cleared []refs.Position
	for _, p := range m.sel.Positions() {
		if p.Row.IsHeader() {
			continue
		}
		m.store.ClearCell(p.Row.Index(), p.Col)
		cleared = append(cleared, p)
	}
	if len(cleared) == 0 {
		return
	}
	m.commitMutation()
	for _, p := range cleared {
		m.mirrorValue(p.Row.Index(), p.Col)
	}
}

func (m *Model) toggleFormat(fn func(*grid.Format)) {
	touched := false
	for _, p := range m.sel.Positions() {
		if p.Row.IsHeader() {
			continue
		}
		m.store.UpdateFormat(p.Row.Index(), p.Col, fn)
		touched = true
	}
	if touched {
		m.commitMutation()
	}
}

func (m *Model) sortBy(desc bool) {
	m.store.SortBy(m.cx, desc)
	m.sortCol, m.sortDesc, m.sorted = m.cx, desc, true
	m.docDetached = true
	m.commitMutation()
}

func (m *Model) appendRow() {
	idx := m.store.AppendRow()
	if m.doc != nil && !m.docDetached {
		m.doc.AppendRow()
	}
	m.commitMutation()
	if vi := m.projIndex(idx); vi >= 0 {
		m.setCursor(vi, m.cx, false)
	}
}

// insertRow adds an empty row next to the cursor; offset 1 is below, 0 above.
// Inserting at the header puts the row first.
func (m *Model) insertRow(offset int) {
	idx := 0
	if m.cy >= 0 {
		idx = m.proj[m.cy] + offset
	}
	m.store.InsertRow(idx)
	if idx < m.store.RowCount()-1 {
		m.docDetached = true
	} else if m.doc != nil && !m.docDetached {
		m.doc.AppendRow()
	}
	m.commitMutation()
	if vi := m.projIndex(idx); vi >= 0 {
		m.setCursor(vi, m.cx, false)
	}
}

func (m *Model) appendColumn() {
	col := m.store.AppendColumn()
	if m.doc != nil {
		m.doc.AddColumn(dataset.Column{Name: col.Name, Key: col.Key})
	}
	m.commitMutation()
	m.setCursor(m.cy, m.store.ColumnCount()-1, false)
}

// insertColumn places a new column at the cursor. Column identity is keyed,
// not positional, so the doc mirror treats it like an append.
func (m *Model) insertColumn() {
	key := m.store.NextColumnKey()
	col := grid.Column{Name: "col" + key, Key: key}
	m.store.InsertColumn(m.cx, col)
	if m.doc != nil {
		m.doc.AddColumn(dataset.Column{Name: col.Name, Key: col.Key})
	}
	m.commitMutation()
	m.setCursor(m.cy, m.cx, false)
}

func (m *Model) moveColumn(delta int) {
	target := m.cx + delta
	if target < 0 || target >= m.store.ColumnCount() {
		return
	}
	m.store.ReorderColumns(m.cx, target)
	m.docDetached = true
	m.commitMutation()
	m.setCursor(m.cy, target, false)
}

func (m *Model) moveRow(delta int) {
	if m.cy < 0 {
		return
	}
	src := m.proj[m.cy]
	tgt := src + delta
	if tgt < 0 || tgt >= m.store.RowCount() {
		return
	}
	m.store.ReorderRows(src, tgt)
	m.docDetached = true
	m.commitMutation()
	if vi := m.projIndex(tgt); vi >= 0 {
		m.setCursor(vi, m.cx, false)
	}
}
