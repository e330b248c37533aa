package dataset

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		fmt.Fprint(w, `{
			"columns": [{"name": "Product", "key": "0"}, {"name": "2020", "key": "1"}],
			"items": [{"0": "A", "1": 10}, {"0": "B", "1": 20}]
		}`)
	}))
	defer srv.Close()

	ds, err := FetchHTTP(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchHTTP: %v", err)
	}
	if len(ds.Columns) != 2 || ds.Columns[0].Name != "Product" {
		t.Fatalf("columns = %+v", ds.Columns)
	}
	if len(ds.Items) != 2 || ds.Items[1]["1"] != float64(20) {
		t.Fatalf("items = %+v", ds.Items)
	}
}

func TestFetchHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()
	if _, err := FetchHTTP(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error on 500")
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"columns": [], "items": []}`)
	}))
	defer empty.Close()
	if _, err := FetchHTTP(context.Background(), empty.URL); err == nil {
		t.Fatal("expected error on dataset without columns")
	}
}

func TestCreateAndReadDoc(t *testing.T) {
	tmp := t.TempDir()

	info, err := CreateDoc(tmp)
	if err != nil {
		t.Fatalf("CreateDoc: %v", err)
	}
	if info.Type != "table" || info.NCols != 1 {
		t.Fatalf("unexpected info: type=%s cols=%d", info.Type, info.NCols)
	}

	doc, _, err := LoadDoc(info.Path)
	if err != nil {
		t.Fatalf("LoadDoc: %v", err)
	}
	ds, err := ReadTable(doc)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(ds.Columns) != 1 || ds.Columns[0].Name != "a" {
		t.Fatalf("columns = %+v, want single column a", ds.Columns)
	}
	if len(ds.Items) != 0 {
		t.Fatalf("items = %d, want 0", len(ds.Items))
	}

	if err := DeleteDocDir(info.Path); err != nil {
		t.Fatalf("DeleteDocDir: %v", err)
	}
	if _, err := os.Stat(info.Path); !os.IsNotExist(err) {
		t.Fatal("doc dir still exists after delete")
	}
}

func TestCreateDemoTable(t *testing.T) {
	tmp := t.TempDir()

	info, err := CreateDemoTable(tmp)
	if err != nil {
		t.Fatalf("CreateDemoTable: %v", err)
	}
	if info.NCols != 3 || info.NRows != 9 {
		t.Fatalf("demo shape %dx%d, want 3x9", info.NCols, info.NRows)
	}

	doc, _, err := LoadDoc(info.Path)
	if err != nil {
		t.Fatalf("LoadDoc: %v", err)
	}
	ds, err := ReadTable(doc)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if got := []string{ds.Columns[0].Name, ds.Columns[1].Name, ds.Columns[2].Name}; got[0] != "key" || got[1] != "value" || got[2] != "notes" {
		t.Fatalf("column names = %v", got)
	}
	if len(ds.Items) != 9 {
		t.Fatalf("rows = %d, want 9", len(ds.Items))
	}
	if ds.Items[0]["1"] != float64(10) {
		t.Fatalf("first value = %v, want 10", ds.Items[0]["1"])
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	info, err := CreateDemoTable(tmp)
	if err != nil {
		t.Fatalf("CreateDemoTable: %v", err)
	}
	doc, _, err := LoadDoc(info.Path)
	if err != nil {
		t.Fatalf("LoadDoc: %v", err)
	}

	d := OpenDocument(doc, info.Path, info.ID)
	d.SetValue(0, "2", "edited note")
	d.RenameColumn("2", "remarks")
	if !d.Dirty() {
		t.Fatal("document not marked dirty after edits")
	}
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if d.Dirty() {
		t.Fatal("document still dirty after save")
	}

	reloaded, _, err := LoadDoc(info.Path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	ds, err := ReadTable(reloaded)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if ds.Items[0]["2"] != "edited note" {
		t.Fatalf("edited cell = %v", ds.Items[0]["2"])
	}
	if ds.Columns[2].Name != "remarks" {
		t.Fatalf("renamed column = %q", ds.Columns[2].Name)
	}
}

func TestDiscoverDocs(t *testing.T) {
	tmp := t.TempDir()
	if _, err := CreateDemoTable(tmp); err != nil {
		t.Fatalf("CreateDemoTable: %v", err)
	}
	if _, err := CreateDoc(tmp); err != nil {
		t.Fatalf("CreateDoc: %v", err)
	}

	docs, err := DiscoverDocs(tmp)
	if err != nil {
		t.Fatalf("DiscoverDocs: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("discovered %d docs, want 2", len(docs))
	}
	for _, d := range docs {
		if d.Type != "table" {
			t.Fatalf("doc %s type = %q, want table", d.ID, d.Type)
		}
	}
}

func TestExecuteQueryBasic(t *testing.T) {
	ds, err := ExecuteQuery("SELECT 1 as a, 'hello' as b", ".")
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if len(ds.Columns) != 2 {
		t.Fatalf("cols = %d, want 2", len(ds.Columns))
	}
	if len(ds.Items) != 1 {
		t.Fatalf("rows = %d, want 1", len(ds.Items))
	}
	if ds.Items[0]["1"] != "hello" {
		t.Fatalf("row = %+v", ds.Items[0])
	}
}

func TestExecuteQueryWithSheetRef(t *testing.T) {
	tmp := t.TempDir()
	info, err := CreateDemoTable(tmp)
	if err != nil {
		t.Fatalf("CreateDemoTable: %v", err)
	}

	query := fmt.Sprintf("SELECT count(*) as cnt FROM @table:%s", info.ID)
	ds, err := ExecuteQuery(query, tmp)
	if err != nil {
		t.Fatalf("ExecuteQuery(%q): %v", query, err)
	}
	if len(ds.Columns) != 1 || ds.Columns[0].Name != "cnt" {
		t.Fatalf("columns = %+v, want single cnt", ds.Columns)
	}
	if len(ds.Items) != 1 || ds.Items[0]["0"] != int64(9) {
		t.Fatalf("result = %+v, want cnt 9", ds.Items)
	}
}
