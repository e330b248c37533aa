package dataset

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/automerge/automerge-go"
)

// DocInfo summarizes one automerge document found in a data directory.
type DocInfo struct {
	ID      string
	Type    string
	Title   string
	Path    string // directory containing snapshot/incremental
	ModTime time.Time
	Size    int64
	NCols   int
	NRows   int
}

// DiscoverDocs walks baseDir (two-level id prefix layout) and summarizes
// every loadable document, newest first.
func DiscoverDocs(baseDir string) ([]DocInfo, error) {
	var docs []DocInfo

	prefixes, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", baseDir, err)
	}

	for _, prefix := range prefixes {
		if !prefix.IsDir() {
			continue
		}
		prefixPath := filepath.Join(baseDir, prefix.Name())
		entries, err := os.ReadDir(prefixPath)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			docID := prefix.Name() + entry.Name()
			docPath := filepath.Join(prefixPath, entry.Name())

			info, err := entry.Info()
			if err != nil {
				continue
			}

			doc, size, err := LoadDoc(docPath)
			if err != nil {
				continue
			}

			di := DocInfo{
				ID:      docID,
				Path:    docPath,
				ModTime: info.ModTime(),
				Size:    size,
			}
			di.Type, di.NCols, di.NRows, di.Title = inspectDoc(doc)
			docs = append(docs, di)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ModTime.After(docs[j].ModTime)
	})
	return docs, nil
}

// LoadDoc reads a document directory: one snapshot, then incrementals on top.
func LoadDoc(docPath string) (*automerge.Doc, int64, error) {
	var doc *automerge.Doc
	var totalSize int64

	snapDir := filepath.Join(docPath, "snapshot")
	if entries, err := os.ReadDir(snapDir); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(snapDir, e.Name()))
			if err != nil {
				continue
			}
			totalSize += int64(len(data))
			doc, err = automerge.Load(data)
			if err != nil {
				return nil, 0, fmt.Errorf("load snapshot: %w", err)
			}
			break // only one snapshot
		}
	}

	incDir := filepath.Join(docPath, "incremental")
	if entries, err := os.ReadDir(incDir); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(incDir, e.Name()))
			if err != nil {
				continue
			}
			totalSize += int64(len(data))
			if doc == nil {
				doc, err = automerge.Load(data)
				if err != nil {
					return nil, 0, fmt.Errorf("load incremental as doc: %w", err)
				}
			} else {
				doc.LoadIncremental(data)
			}
		}
	}

	if doc == nil {
		return nil, 0, fmt.Errorf("no data found in %s", docPath)
	}
	return doc, totalSize, nil
}

func inspectDoc(doc *automerge.Doc) (docType string, nCols, nRows int, title string) {
	docType = "unknown"

	if v, err := doc.Path("type").Get(); err == nil && v.Kind() == automerge.KindStr {
		docType = v.Str()
	}

	dataVal, err := doc.Path("data").Get()
	if err != nil || dataVal.Kind() != automerge.KindList {
		return
	}
	dataList := dataVal.List()
	total := dataList.Len()
	if total == 0 {
		docType = "empty"
		return
	}

	row0, err := dataList.Get(0)
	if err != nil || row0.Kind() != automerge.KindMap {
		return
	}
	row0Map := row0.Map()
	keys, _ := row0Map.Keys()
	if len(keys) == 0 {
		return
	}

	// a table doc's first list entry maps column keys to {name, type, key}
	firstVal, err := row0Map.Get(keys[0])
	if err == nil && firstVal.Kind() == automerge.KindMap {
		fkeys, _ := firstVal.Map().Keys()
		if hasKey(fkeys, "name") {
			if docType == "unknown" {
				docType = "table"
			}
			nCols = len(keys)
			nRows = total - 1
			title = columnNamesTitle(row0Map)
		}
	}
	return
}

func columnNamesTitle(colDefs *automerge.Map) string {
	keys, _ := colDefs.Keys()
	sorted := append([]string(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool {
		a, _ := strconv.Atoi(sorted[i])
		b, _ := strconv.Atoi(sorted[j])
		return a < b
	})
	title := ""
	n := 0
	for _, k := range sorted {
		v, err := colDefs.Get(k)
		if err != nil || v.Kind() != automerge.KindMap {
			continue
		}
		if name := getStr(v.Map(), "name"); name != "" {
			if n > 0 {
				title += ", "
			}
			title += name
			n++
		}
		if n >= 5 {
			break
		}
	}
	return title
}

func getStr(m *automerge.Map, key string) string {
	v, err := m.Get(key)
	if err != nil {
		return ""
	}
	switch v.Kind() {
	case automerge.KindStr:
		return v.Str()
	case automerge.KindText:
		s, _ := v.Text().Get()
		return s
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

func hasKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// ReadTable converts a table document (data = [colDefs, ...rows]) to the
// dataset contract.
func ReadTable(doc *automerge.Doc) (*Dataset, error) {
	dataVal, err := doc.Path("data").Get()
	if err != nil || dataVal.Kind() != automerge.KindList {
		return nil, fmt.Errorf("doc has no table data")
	}
	dataList := dataVal.List()
	total := dataList.Len()
	if total == 0 {
		return nil, fmt.Errorf("data list is empty")
	}

	row0Val, err := dataList.Get(0)
	if err != nil {
		return nil, fmt.Errorf("get column defs: %w", err)
	}
	if row0Val.Kind() != automerge.KindMap {
		return nil, fmt.Errorf("column defs row is %s, expected map", row0Val.Kind())
	}
	row0 := row0Val.Map()
	keys, err := row0.Keys()
	if err != nil {
		return nil, fmt.Errorf("column def keys: %w", err)
	}

	var cols []Column
	for _, k := range keys {
		colVal, err := row0.Get(k)
		if err != nil || colVal.Kind() != automerge.KindMap {
			continue
		}
		c := Column{Key: k, Name: getStr(colVal.Map(), "name")}
		if c.Name == "" {
			c.Name = "col" + k
		}
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool {
		a, _ := strconv.Atoi(cols[i].Key)
		b, _ := strconv.Atoi(cols[j].Key)
		return a < b
	})

	var items []map[string]any
	for i := 1; i < total; i++ {
		rowVal, err := dataList.Get(i)
		if err != nil || rowVal.Kind() != automerge.KindMap {
			continue
		}
		rowMap := rowVal.Map()
		item := make(map[string]any)
		for _, c := range cols {
			v, err := rowMap.Get(c.Key)
			if err != nil || v.Kind() == automerge.KindVoid {
				item[c.Key] = nil
				continue
			}
			switch v.Kind() {
			case automerge.KindStr:
				item[c.Key] = v.Str()
			case automerge.KindFloat64:
				item[c.Key] = v.Float64()
			case automerge.KindInt64:
				item[c.Key] = v.Int64()
			case automerge.KindUint64:
				item[c.Key] = v.Uint64()
			case automerge.KindBool:
				item[c.Key] = v.Bool()
			case automerge.KindNull:
				item[c.Key] = nil
			default:
				item[c.Key] = v.Interface()
			}
		}
		items = append(items, item)
	}

	return &Dataset{Columns: cols, Items: items}, nil
}

// SaveDoc writes a fresh snapshot and clears incrementals it supersedes.
func SaveDoc(doc *automerge.Doc, docPath string) error {
	data := doc.Save()
	snapDir := filepath.Join(docPath, "snapshot")
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		return fmt.Errorf("mkdir snapshot dir: %w", err)
	}

	if entries, err := os.ReadDir(snapDir); err == nil {
		for _, e := range entries {
			os.Remove(filepath.Join(snapDir, e.Name()))
		}
	}
	incDir := filepath.Join(docPath, "incremental")
	if entries, err := os.ReadDir(incDir); err == nil {
		for _, e := range entries {
			os.Remove(filepath.Join(incDir, e.Name()))
		}
	}
	os.Remove(incDir)

	return os.WriteFile(filepath.Join(snapDir, "gridsheet-save"), data, 0o644)
}

// DocPathFromID maps a document id to its two-level directory.
func DocPathFromID(dataDir, docID string) string {
	if len(docID) < 2 {
		return filepath.Join(dataDir, docID)
	}
	return filepath.Join(dataDir, docID[:2], docID[2:])
}

// CreateDoc creates a new single-column table document in baseDir and
// returns its summary.
func CreateDoc(baseDir string) (DocInfo, error) {
	cols := []Column{{Name: "a", Key: "0"}}
	return createTableDoc(baseDir, cols, nil)
}

// CreateDemoTable creates a small populated table for first runs and tests.
func CreateDemoTable(baseDir string) (DocInfo, error) {
	cols := []Column{
		{Name: "key", Key: "0"},
		{Name: "value", Key: "1"},
		{Name: "notes", Key: "2"},
	}
	items := make([]map[string]any, 9)
	for i := range items {
		items[i] = map[string]any{
			"0": fmt.Sprintf("row-%d", i+1),
			"1": float64((i + 1) * 10),
			"2": "",
		}
	}
	return createTableDoc(baseDir, cols, items)
}

func createTableDoc(baseDir string, cols []Column, items []map[string]any) (DocInfo, error) {
	doc := automerge.New()
	if err := doc.Path("type").Set("table"); err != nil {
		return DocInfo{}, fmt.Errorf("set doc type: %w", err)
	}

	colDefs := make(map[string]any, len(cols))
	for _, c := range cols {
		colDefs[c.Key] = map[string]any{"name": c.Name, "type": "text", "key": c.Key}
	}
	data := make([]any, 0, len(items)+1)
	data = append(data, colDefs)
	for _, item := range items {
		row := make(map[string]any, len(cols))
		for _, c := range cols {
			row[c.Key] = item[c.Key]
		}
		data = append(data, row)
	}
	if err := doc.Path("data").Set(data); err != nil {
		return DocInfo{}, fmt.Errorf("set doc data: %w", err)
	}
	if _, err := doc.Commit("create table"); err != nil {
		return DocInfo{}, fmt.Errorf("commit: %w", err)
	}

	id, err := newDocID()
	if err != nil {
		return DocInfo{}, err
	}
	docPath := DocPathFromID(baseDir, id)
	if err := os.MkdirAll(docPath, 0o755); err != nil {
		return DocInfo{}, fmt.Errorf("mkdir doc dir: %w", err)
	}
	if err := SaveDoc(doc, docPath); err != nil {
		return DocInfo{}, fmt.Errorf("save new doc: %w", err)
	}

	return DocInfo{
		ID:      id,
		Type:    "table",
		Title:   columnTitle(cols),
		Path:    docPath,
		ModTime: time.Now(),
		NCols:   len(cols),
		NRows:   len(items),
	}, nil
}

func columnTitle(cols []Column) string {
	title := ""
	for i, c := range cols {
		if i >= 5 {
			break
		}
		if i > 0 {
			title += ", "
		}
		title += c.Name
	}
	return title
}

func newDocID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate doc id: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// DeleteDocDir removes a document directory entirely.
func DeleteDocDir(docPath string) error {
	return os.RemoveAll(docPath)
}
