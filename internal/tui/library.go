package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/surprisetalk/gridsheet/internal/dataset"
)

func (m *Model) refreshLibrary() {
	m.docs = m.docs[:0]
	all, err := dataset.DiscoverDocs(m.dataDir)
	if err != nil {
		m.err = err
		return
	}
	for _, d := range all {
		if d.Type == "table" {
			m.docs = append(m.docs, d)
		}
	}
	if m.libCursor >= len(m.docs) {
		m.libCursor = len(m.docs) - 1
	}
	if m.libCursor < 0 {
		m.libCursor = 0
	}
	m.err = nil
}

func (m Model) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.libCursor > 0 {
			m.libCursor--
		}
	case "down", "j":
		if m.libCursor < len(m.docs)-1 {
			m.libCursor++
		}
	case "r":
		m.refreshLibrary()
	case "n":
		if _, err := dataset.CreateDoc(m.dataDir); err != nil {
			m.err = err
		} else {
			m.refreshLibrary()
		}
	case "D":
		if m.libCursor < len(m.docs) {
			if err := dataset.DeleteDocDir(m.docs[m.libCursor].Path); err != nil {
				m.err = err
			} else {
				m.refreshLibrary()
			}
		}
	case "enter":
		if m.libCursor < len(m.docs) {
			return m.openDoc(m.docs[m.libCursor])
		}
	}
	return m, nil
}

func (m Model) openDoc(info dataset.DocInfo) (tea.Model, tea.Cmd) {
	doc, _, err := dataset.LoadDoc(info.Path)
	if err != nil {
		m.err = err
		return m, nil
	}
	ds, err := dataset.ReadTable(doc)
	if err != nil {
		m.err = err
		return m, nil
	}
	title := info.Title
	if title == "" {
		title = info.ID
	}
	m.bindDataset(title, ds, dataset.OpenDocument(doc, info.Path, info.ID))
	m.view = viewTable
	m.log.Info("opened", "doc", info.ID, "cols", len(ds.Columns), "rows", len(ds.Items))
	return m, nil
}

func (m Model) viewLibrary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" gridsheet"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(" error: "+m.err.Error()) + "\n")
	}

	if len(m.docs) == 0 {
		b.WriteString(dimStyle.Render(" no documents found\n"))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (searched %s, press n to create one)\n", m.dataDir)))
	}

	visibleRows := m.height - 4
	if visibleRows < 1 {
		visibleRows = 1
	}
	if m.libCursor < m.libScroll {
		m.libScroll = m.libCursor
	}
	if m.libCursor >= m.libScroll+visibleRows {
		m.libScroll = m.libCursor - visibleRows + 1
	}

	for i := m.libScroll; i < len(m.docs) && i < m.libScroll+visibleRows; i++ {
		d := m.docs[i]
		cursor := "  "
		if i == m.libCursor {
			cursor = "> "
		}

		id := d.ID
		if len(id) > 12 {
			id = id[:12] + ".."
		}
		title := d.Title
		if len(title) > 30 {
			title = title[:30] + ".."
		}

		line := fmt.Sprintf("%s%-14s %3dx%-3d %s  %s",
			cursor, id, d.NCols, d.NRows, d.ModTime.Format("Jan 02"), title)

		if i == m.libCursor {
			b.WriteString(cursorStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(" j/k navigate  enter open  n new  D delete  r refresh  q quit"))
	return b.String()
}
