// Package tui is the interactive grid editor: a bubbletea program with a
// document library view and a table view. The table view drives the grid
// store through a filtered row projection, records every mutation in history
// and mirrors edits back to the owning automerge document.
package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/surprisetalk/gridsheet/internal/config"
	"github.com/surprisetalk/gridsheet/internal/dataset"
	"github.com/surprisetalk/gridsheet/internal/formula"
	"github.com/surprisetalk/gridsheet/internal/grid"
	"github.com/surprisetalk/gridsheet/internal/history"
	"github.com/surprisetalk/gridsheet/internal/refs"
	"github.com/surprisetalk/gridsheet/internal/selection"
	"github.com/surprisetalk/gridsheet/internal/viewport"
)

type view int

const (
	viewLibrary view = iota
	viewTable
)

type mode int

const (
	modeNormal mode = iota
	modeEdit
	modeFilter
)

// filterDebounceMsg fires after the debounce delay; stale generations are
// dropped by sequence number.
type filterDebounceMsg struct{ seq int }

// Model is the whole program state.
type Model struct {
	cfg  config.Config
	log  *slog.Logger
	keys keyMap

	view   view
	width  int
	height int
	err    error

	// library
	dataDir   string
	docs      []dataset.DocInfo
	libCursor int
	libScroll int

	// table
	title string
	doc   *dataset.Document
	// set once row positions in the doc no longer match the store (sort,
	// reorder, mid-insert, undo); save rewrites the table wholesale then
	docDetached bool

	store *grid.Store
	sel   *selection.Model
	hist  *history.Manager

	// proj maps visible row order to store row indices, post-filter
	proj        []int
	filter      string
	filterInput textinput.Model
	filterSeq   int

	sortCol  int
	sortDesc bool
	sorted   bool

	// cy == -1 is the header row, otherwise an index into proj
	cx, cy    int
	anchor    refs.Position
	scroll    int
	colOffset int
	win       viewport.Window

	mode       mode
	editInput  textinput.Model
	editTarget refs.Position
}

func newModel(cfg config.Config, log *slog.Logger) Model {
	fi := textinput.New()
	fi.Prompt = "filter: "
	fi.CharLimit = 128
	ei := textinput.New()
	ei.Prompt = ""
	ei.CharLimit = 256
	return Model{
		cfg:         cfg,
		log:         log,
		keys:        defaultKeyMap(),
		filterInput: fi,
		editInput:   ei,
	}
}

// NewLibrary opens the document browser over a data directory.
func NewLibrary(cfg config.Config, log *slog.Logger, dataDir string) Model {
	m := newModel(cfg, log)
	m.view = viewLibrary
	m.dataDir = dataDir
	m.refreshLibrary()
	return m
}

// NewFromDataset opens the table view directly over an already-loaded
// dataset. doc may be nil for read-only sources like HTTP datasets and query
// results.
func NewFromDataset(cfg config.Config, log *slog.Logger, title string, ds *dataset.Dataset, doc *dataset.Document) Model {
	m := newModel(cfg, log)
	m.view = viewTable
	m.bindDataset(title, ds, doc)
	return m
}

// bindDataset resets all table state around a fresh dataset and records the
// loaded contents as the first history entry.
func (m *Model) bindDataset(title string, ds *dataset.Dataset, doc *dataset.Document) {
	cols := make([]grid.Column, len(ds.Columns))
	for i, c := range ds.Columns {
		cols[i] = grid.Column{Name: c.Name, Key: c.Key}
	}
	m.store = grid.New(cols, ds.Items)
	m.store.FitColumnWidths()
	m.sel = selection.New()
	m.hist = history.NewManager()
	m.hist.Record(m.store.SnapshotCells(), m.store.Columns())
	m.doc = doc
	m.docDetached = false
	m.title = title
	m.filter = ""
	m.filterInput.Reset()
	m.sorted = false
	m.cx, m.cy = 0, 0
	if m.store.RowCount() == 0 {
		m.cy = -1
	}
	m.scroll, m.colOffset = 0, 0
	m.mode = modeNormal
	m.err = nil
	m.refreshProjection()
	m.anchor = m.cursorPos()
	m.sel.SelectSingle(m.cursorPos())
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == viewTable {
			m.ensureVisible()
		}
		return m, nil
	case filterDebounceMsg:
		if m.mode == modeFilter && msg.seq == m.filterSeq {
			m.filter = m.filterInput.Value()
			m.refreshProjection()
		}
		return m, nil
	case tea.MouseMsg:
		if m.view == viewTable && m.mode == modeNormal {
			return m.updateMouse(msg)
		}
		return m, nil
	case tea.KeyMsg:
		if m.view == viewLibrary {
			return m.updateLibrary(msg)
		}
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeFilter:
			return m.updateFilter(msg)
		default:
			return m.updateTable(msg)
		}
	}
	return m, nil
}

// --- cursor and projection ---

// cursorPos is the cursor in grid coordinates: header row or a store row.
func (m Model) cursorPos() refs.Position {
	if m.cy < 0 || m.cy >= len(m.proj) {
		return refs.Position{Row: refs.Header(), Col: m.cx}
	}
	return refs.Position{Row: refs.Data(m.proj[m.cy]), Col: m.cx}
}

// projIndex maps a store row back to its projection slot, -1 when filtered
// out.
func (m Model) projIndex(storeRow int) int {
	for vi, r := range m.proj {
		if r == storeRow {
			return vi
		}
	}
	return -1
}

func (m *Model) refreshProjection() {
	m.proj = m.store.MatchingRows(m.filter)
	if m.cy >= len(m.proj) {
		m.cy = len(m.proj) - 1
	}
	if m.cx >= m.store.ColumnCount() {
		m.cx = m.store.ColumnCount() - 1
	}
	if m.cx < 0 {
		m.cx = 0
	}
	m.ensureVisible()
}

func (m Model) dataHeight() int {
	h := m.height - 5 // title + header + separator + status + help
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) ensureVisible() {
	dh := m.dataHeight()
	if m.cy >= 0 {
		if m.cy < m.scroll {
			m.scroll = m.cy
		}
		if m.cy >= m.scroll+dh {
			m.scroll = m.cy - dh + 1
		}
	}
	m.clampScroll()
}

func (m *Model) clampScroll() {
	if max := len(m.proj) - m.dataHeight(); m.scroll > max {
		m.scroll = max
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
	m.recomputeWindow()
}

func (m *Model) recomputeWindow() {
	wc := viewport.Config{RowHeight: m.cfg.RowHeight, BufferRows: m.cfg.BufferRows}
	m.win = wc.Compute(len(m.proj), m.scroll*m.cfg.RowHeight, m.dataHeight()*m.cfg.RowHeight)
}

func (m *Model) setCursor(cy, cx int, extend bool) {
	m.cy, m.cx = cy, cx
	if extend {
		m.sel.ExtendRange(m.anchor, m.cursorPos())
	} else {
		m.anchor = m.cursorPos()
		m.sel.SelectSingle(m.cursorPos())
	}
	m.ensureVisible()
}

func (m *Model) moveCursor(dr, dc int, extend bool) {
	cy, cx := m.cy+dr, m.cx+dc
	if cy < -1 {
		cy = -1
	}
	if cy >= len(m.proj) {
		cy = len(m.proj) - 1
	}
	if cx < 0 {
		cx = 0
	}
	if cx >= m.store.ColumnCount() {
		cx = m.store.ColumnCount() - 1
	}
	m.setCursor(cy, cx, extend)
}

// jumpCursor moves to the edge of the contiguous filled block in one
// direction, or across the gap to the next filled cell.
func (m *Model) jumpCursor(dr, dc int) {
	inBounds := func(y, x int) bool {
		return y >= -1 && y < len(m.proj) && x >= 0 && x < m.store.ColumnCount()
	}
	filled := func(y, x int) bool {
		if !inBounds(y, x) {
			return false
		}
		if y < 0 {
			return true // header cells always count
		}
		return grid.Display(m.store.CellAt(m.proj[y], x).Value) != ""
	}
	ny, nx := m.cy+dr, m.cx+dc
	if !inBounds(ny, nx) {
		return
	}
	if filled(m.cy, m.cx) && filled(ny, nx) {
		for filled(ny+dr, nx+dc) {
			ny, nx = ny+dr, nx+dc
		}
	} else {
		for !filled(ny, nx) && inBounds(ny+dr, nx+dc) {
			ny, nx = ny+dr, nx+dc
		}
	}
	m.setCursor(ny, nx, false)
}

// --- mutation plumbing ---

func (m *Model) evalFormula(src string) any {
	return formula.Eval(src, m.store)
}

// commitMutation is the tail of every grid mutation: recompute formulas over
// the new state, snapshot it, refresh the projection. Recalculated formula
// results are pushed to the doc here; the triggering cell alone is not
// enough, since a dependency edit changes cells the caller never touched.
func (m *Model) commitMutation() {
	m.store.RecalcFormulas(m.evalFormula)
	m.hist.Record(m.store.SnapshotCells(), m.store.Columns())
	m.mirrorFormulaCells()
	m.refreshProjection()
}

// mirrorFormulaCells pushes every formula cell's current value to the doc so
// an incremental save never persists a stale result.
func (m *Model) mirrorFormulaCells() {
	if m.doc == nil || m.docDetached {
		return
	}
	for r := 0; r < m.store.RowCount(); r++ {
		for c := 0; c < m.store.ColumnCount(); c++ {
			if m.store.CellAt(r, c).Formula != "" {
				m.mirrorValue(r, c)
			}
		}
	}
}

// applySnapshot replaces grid contents from an undo/redo snapshot. Column
// renames it carries are pushed to the doc one column at a time, only where
// the name actually differs.
func (m *Model) applySnapshot(s history.Snapshot) {
	prev := m.store.Columns()
	m.store.Restore(s.Cells, s.Columns)
	for i, col := range m.store.Columns() {
		if i < len(prev) && prev[i].Name != col.Name {
			m.doc.RenameColumn(col.Key, col.Name)
		}
	}
	m.docDetached = true
	m.refreshProjection()
}

// mirrorValue pushes one store cell into the doc while row positions still
// line up.
func (m *Model) mirrorValue(row, col int) {
	if m.doc == nil || m.docDetached {
		return
	}
	m.doc.SetValue(row, m.store.Column(col).Key, m.store.CellAt(row, col).Value)
}

func (m Model) exportItems() []map[string]any {
	cols := m.store.Columns()
	items := make([]map[string]any, m.store.RowCount())
	for r := range items {
		item := make(map[string]any, len(cols))
		for c, col := range cols {
			item[col.Key] = m.store.CellAt(r, c).Value
		}
		items[r] = item
	}
	return items
}

func (m *Model) save() {
	if m.doc == nil {
		return
	}
	if m.docDetached {
		cols := m.store.Columns()
		dcols := make([]dataset.Column, len(cols))
		for i, c := range cols {
			dcols[i] = dataset.Column{Name: c.Name, Key: c.Key}
		}
		m.doc.ReplaceData(dcols, m.exportItems())
		m.docDetached = false
	}
	if err := m.doc.Save(); err != nil {
		m.err = err
		m.log.Error("save failed", "doc", m.doc.ID(), "err", err)
		return
	}
	m.log.Info("saved", "doc", m.doc.ID())
}
