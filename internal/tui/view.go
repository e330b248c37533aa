package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/surprisetalk/gridsheet/internal/grid"
	"github.com/surprisetalk/gridsheet/internal/refs"
)

// styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	cursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	selectStyle = lipgloss.NewStyle().Background(lipgloss.Color("6")).Foreground(lipgloss.Color("0"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	switch m.view {
	case viewLibrary:
		return m.viewLibrary()
	case viewTable:
		return m.viewTable()
	}
	return ""
}

func (m Model) viewTable() string {
	var b strings.Builder

	title := m.title
	if len(title) > 40 {
		title = title[:40] + ".."
	}
	b.WriteString(titleStyle.Render(" " + title))
	if m.doc != nil && (m.doc.Dirty() || m.docDetached) {
		b.WriteString(" *")
	}
	b.WriteString("\n")

	if m.store.ColumnCount() == 0 {
		b.WriteString(dimStyle.Render(" (empty table)\n"))
		return b.String()
	}

	visStart, visEnd := m.visibleColRange()

	// header
	for ci := visStart; ci < visEnd; ci++ {
		w := m.store.ColumnWidth(ci)
		name := m.store.Column(ci).Name
		if len(name) > w {
			name = name[:w-1] + "."
		}
		cell := fmt.Sprintf(" %-*s ", w, name)
		pos := refs.Position{Row: refs.Header(), Col: ci}
		switch {
		case m.cy == -1 && ci == m.cx:
			b.WriteString(cursorStyle.Render(cell))
		case m.sel.Contains(pos):
			b.WriteString(selectStyle.Render(cell))
		default:
			b.WriteString(headerStyle.Render(cell))
		}
		if ci < visEnd-1 {
			b.WriteString(dimStyle.Render("|"))
		}
	}
	b.WriteString("\n")

	// separator
	for ci := visStart; ci < visEnd; ci++ {
		b.WriteString(dimStyle.Render(strings.Repeat("─", m.store.ColumnWidth(ci)+2)))
		if ci < visEnd-1 {
			b.WriteString(dimStyle.Render("┼"))
		}
	}
	b.WriteString("\n")

	// data rows: only what the window materialized, clipped to the screen
	first := m.scroll
	if first < m.win.Start {
		first = m.win.Start
	}
	last := m.scroll + m.dataHeight()
	if last > m.win.End {
		last = m.win.End
	}
	for vi := first; vi < last; vi++ {
		for ci := visStart; ci < visEnd; ci++ {
			b.WriteString(m.renderCell(vi, ci))
			if ci < visEnd-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.bottomLine())
	return b.String()
}

func (m Model) renderCell(vi, ci int) string {
	storeRow := m.proj[vi]
	cell := m.store.CellAt(storeRow, ci)
	w := m.store.ColumnWidth(ci)
	text := grid.Display(cell.Value)

	align := cell.Format.Align
	if align == grid.AlignDefault && m.store.IsNumericColumn(ci) {
		align = grid.AlignRight
	}
	out := " " + alignCell(text, w, align) + " "

	pos := refs.Position{Row: refs.Data(storeRow), Col: ci}
	if vi == m.cy && ci == m.cx {
		return cursorStyle.Render(out)
	}
	if m.sel.Contains(pos) {
		return selectStyle.Render(out)
	}

	st := lipgloss.NewStyle()
	styled := false
	if cell.Format.Bold {
		st = st.Bold(true)
		styled = true
	}
	if cell.Format.Italic {
		st = st.Italic(true)
		styled = true
	}
	if cell.Format.Background != "" {
		st = st.Background(lipgloss.Color(cell.Format.Background))
		styled = true
	}
	if styled {
		return st.Render(out)
	}
	return out
}

func alignCell(s string, w int, align grid.Alignment) string {
	if len(s) > w {
		return s[:w-1] + "."
	}
	switch align {
	case grid.AlignRight:
		return fmt.Sprintf("%*s", w, s)
	case grid.AlignCenter:
		left := (w - len(s)) / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-len(s)-left)
	default:
		return fmt.Sprintf("%-*s", w, s)
	}
}

func (m Model) statusLine() string {
	if m.err != nil {
		return errorStyle.Render(" error: " + m.err.Error())
	}
	modeStr := "NORMAL"
	switch m.mode {
	case modeEdit:
		modeStr = "EDIT"
	case modeFilter:
		modeStr = "FILTER"
	}
	loc := m.cursorPos().Ref()
	if m.sel.Count() > 1 {
		loc = m.sel.RangeString()
	}
	status := fmt.Sprintf(" %s %s  %dx%d", modeStr, loc, m.store.ColumnCount(), len(m.proj))
	if m.filter != "" {
		status += fmt.Sprintf("  filter:%q", m.filter)
	}
	if m.sorted {
		dir := "asc"
		if m.sortDesc {
			dir = "desc"
		}
		status += fmt.Sprintf("  sort:%s %s", refs.ColumnLetter(m.sortCol), dir)
	}
	rh := m.cfg.RowHeight
	if rh < 1 {
		rh = 1
	}
	if m.win.LeadingSpacer > 0 || m.win.TrailingSpacer > 0 {
		status += fmt.Sprintf("  ↑%d ↓%d", m.win.LeadingSpacer/rh, m.win.TrailingSpacer/rh)
	}
	return statusStyle.Render(status)
}

func (m Model) bottomLine() string {
	switch m.mode {
	case modeEdit:
		return " " + m.editTarget.Ref() + " " + m.editInput.View()
	case modeFilter:
		return " " + m.filterInput.View()
	default:
		help := " arrows move  enter edit  / filter  s/S sort  a/A append  ctrl+z undo  ctrl+s save  q back"
		return dimStyle.Render(help)
	}
}

// visibleColRange picks the horizontal slice of columns that fits the screen,
// always keeping the cursor column visible.
func (m Model) visibleColRange() (int, int) {
	ncols := m.store.ColumnCount()
	avail := m.width - 2
	start := m.colOffset
	if start < 0 || start >= ncols {
		start = 0
	}
	used := 0
	end := start
	for end < ncols {
		w := m.store.ColumnWidth(end) + 3 // padding + separator
		if used+w > avail && end > start {
			break
		}
		used += w
		end++
	}
	if m.cx >= end {
		end = m.cx + 1
		used = 0
		for i := end - 1; i >= 0; i-- {
			used += m.store.ColumnWidth(i) + 3
			if used > avail {
				start = i + 1
				break
			}
			start = i
		}
	}
	if m.cx < start {
		start = m.cx
	}
	return start, end
}
