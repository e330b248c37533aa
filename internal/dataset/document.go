package dataset

import (
	"fmt"

	"github.com/automerge/automerge-go"
)

// Document mirrors column identity and cell values of an opened automerge
// table document. The grid store stays the source of truth for cell data;
// the mirror only keeps the owning document in sync so a save round-trips.
type Document struct {
	doc   *automerge.Doc
	path  string
	id    string
	dirty bool
}

// OpenDocument binds a loaded doc to its directory for later saves.
func OpenDocument(doc *automerge.Doc, path, id string) *Document {
	return &Document{doc: doc, path: path, id: id}
}

func (d *Document) ID() string  { return d.id }
func (d *Document) Dirty() bool { return d.dirty }

// SetValue writes one cell value; data rows start at list index 1, after the
// column defs entry.
func (d *Document) SetValue(rowIdx int, key string, value any) {
	if d == nil {
		return
	}
	if err := d.doc.Path("data", rowIdx+1, key).Set(value); err == nil {
		d.dirty = true
	}
}

// AppendRow appends an empty row map to the data list.
func (d *Document) AppendRow() {
	if d == nil {
		return
	}
	dataVal, err := d.doc.Path("data").Get()
	if err != nil || dataVal.Kind() != automerge.KindList {
		return
	}
	if err := dataVal.List().Append(automerge.NewMap()); err == nil {
		d.dirty = true
	}
}

// AddColumn registers a new column identity in the column defs entry.
// Position is a display concern owned by the grid store, so insert and
// append look the same here.
func (d *Document) AddColumn(col Column) {
	if d == nil {
		return
	}
	d.doc.Path("data", 0, col.Key).Set(automerge.NewMap())
	d.doc.Path("data", 0, col.Key, "name").Set(col.Name)
	d.doc.Path("data", 0, col.Key, "type").Set("text")
	d.doc.Path("data", 0, col.Key, "key").Set(col.Key)
	d.dirty = true
}

// RenameColumn updates a column's display name by key.
func (d *Document) RenameColumn(key, name string) {
	if d == nil {
		return
	}
	if err := d.doc.Path("data", 0, key, "name").Set(name); err == nil {
		d.dirty = true
	}
}

// ReplaceData rewrites the document's table wholesale from the current grid
// contents. Used after structural changes (sort, reorder, insert, undo) where
// per-cell mirroring can no longer track row positions.
func (d *Document) ReplaceData(cols []Column, items []map[string]any) {
	if d == nil {
		return
	}
	colDefs := make(map[string]any, len(cols))
	for _, c := range cols {
		colDefs[c.Key] = map[string]any{"name": c.Name, "type": "text", "key": c.Key}
	}
	data := make([]any, 0, len(items)+1)
	data = append(data, colDefs)
	for _, item := range items {
		data = append(data, item)
	}
	if err := d.doc.Path("data").Set(data); err == nil {
		d.dirty = true
	}
}

// Save commits pending changes and writes a fresh snapshot. No-op when
// nothing changed.
func (d *Document) Save() error {
	if d == nil || !d.dirty {
		return nil
	}
	if _, err := d.doc.Commit("gridsheet edit"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if err := SaveDoc(d.doc, d.path); err != nil {
		return fmt.Errorf("save %s: %w", d.id, err)
	}
	d.dirty = false
	return nil
}
