package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the table-view binding set. Single-letter commands win over
// edit seeding; any printable rune without a binding starts an edit.
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	ExtendUp    key.Binding
	ExtendDown  key.Binding
	ExtendLeft  key.Binding
	ExtendRight key.Binding

	JumpUp    key.Binding
	JumpDown  key.Binding
	JumpLeft  key.Binding
	JumpRight key.Binding

	RowStart  key.Binding
	RowEnd    key.Binding
	GridStart key.Binding
	GridEnd   key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	NextCell  key.Binding
	PrevCell  key.Binding

	Edit         key.Binding
	Clear        key.Binding
	ToggleSelect key.Binding
	Filter       key.Binding
	SortAsc      key.Binding
	SortDesc     key.Binding
	Undo         key.Binding
	Redo         key.Binding
	Bold         key.Binding
	Italic       key.Binding

	AppendRow      key.Binding
	AppendCol      key.Binding
	InsertRowBelow key.Binding
	InsertRowAbove key.Binding
	InsertCol      key.Binding
	MoveColLeft    key.Binding
	MoveColRight   key.Binding
	MoveRowUp      key.Binding
	MoveRowDown    key.Binding

	Save key.Binding
	Back key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),

		ExtendUp:    key.NewBinding(key.WithKeys("shift+up")),
		ExtendDown:  key.NewBinding(key.WithKeys("shift+down")),
		ExtendLeft:  key.NewBinding(key.WithKeys("shift+left")),
		ExtendRight: key.NewBinding(key.WithKeys("shift+right")),

		JumpUp:    key.NewBinding(key.WithKeys("ctrl+up")),
		JumpDown:  key.NewBinding(key.WithKeys("ctrl+down")),
		JumpLeft:  key.NewBinding(key.WithKeys("ctrl+left")),
		JumpRight: key.NewBinding(key.WithKeys("ctrl+right")),

		RowStart:  key.NewBinding(key.WithKeys("home")),
		RowEnd:    key.NewBinding(key.WithKeys("end")),
		GridStart: key.NewBinding(key.WithKeys("ctrl+home")),
		GridEnd:   key.NewBinding(key.WithKeys("ctrl+end")),
		PageUp:    key.NewBinding(key.WithKeys("pgup")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown")),
		NextCell:  key.NewBinding(key.WithKeys("tab")),
		PrevCell:  key.NewBinding(key.WithKeys("shift+tab")),

		Edit:  key.NewBinding(key.WithKeys("enter", "f2"), key.WithHelp("enter", "edit")),
		Clear: key.NewBinding(key.WithKeys("delete", "backspace"), key.WithHelp("del", "clear")),
		// terminals deliver ctrl+space as ctrl+@
		ToggleSelect: key.NewBinding(key.WithKeys("ctrl+@"), key.WithHelp("ctrl+space", "toggle select")),
		Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		SortAsc:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort asc")),
		SortDesc:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sort desc")),
		Undo:         key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo:         key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "redo")),
		Bold:         key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bold")),
		// ctrl+i is tab on a terminal, so italic gets ctrl+t
		Italic: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "italic")),

		AppendRow:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "append row")),
		AppendCol:      key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "append col")),
		InsertRowBelow: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "insert row below")),
		InsertRowAbove: key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "insert row above")),
		InsertCol:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "insert col")),
		MoveColLeft:    key.NewBinding(key.WithKeys("<")),
		MoveColRight:   key.NewBinding(key.WithKeys(">")),
		MoveRowUp:      key.NewBinding(key.WithKeys("[")),
		MoveRowDown:    key.NewBinding(key.WithKeys("]")),

		Save: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Back: key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "back")),
		Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}
