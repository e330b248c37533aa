package dataset

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

var sheetRefRe = regexp.MustCompile(`@[a-zA-Z0-9_:.-]+`)

// ExecuteQuery runs a SQL query over sheets referenced as @doc_id, loading
// each into an in-memory SQLite database first. The result comes back as a
// regular dataset so it can be opened in the grid like any other source.
func ExecuteQuery(code string, dataDir string) (*Dataset, error) {
	refTokens := sheetRefRe.FindAllString(code, -1)

	type sheet struct {
		ds        *Dataset
		tableName string
	}
	loaded := map[string]*sheet{}

	for _, ref := range refTokens {
		id := ref[1:] // strip @
		if _, ok := loaded[id]; ok {
			continue
		}

		// sheet refs may carry a type prefix: type:doc_id
		docID := id
		if i := strings.Index(id, ":"); i >= 0 {
			docID = id[i+1:]
		}

		docPath := DocPathFromID(dataDir, docID)
		doc, _, err := LoadDoc(docPath)
		if err != nil {
			return nil, fmt.Errorf("load @%s (%s): %w", id, docPath, err)
		}
		ds, err := ReadTable(doc)
		if err != nil {
			return nil, fmt.Errorf("read @%s: %w", id, err)
		}
		loaded[id] = &sheet{ds: ds, tableName: sanitizeIdent(id)}
	}

	rewritten := code
	for id, s := range loaded {
		rewritten = strings.ReplaceAll(rewritten, "@"+id, `"`+s.tableName+`"`)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	defer db.Close()

	for _, s := range loaded {
		if err := loadIntoSQLite(db, s.tableName, s.ds); err != nil {
			return nil, err
		}
	}

	sqlRows, err := db.Query(rewritten)
	if err != nil {
		return nil, err
	}
	defer sqlRows.Close()
	return scanQueryResults(sqlRows)
}

func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func loadIntoSQLite(db *sql.DB, tableName string, ds *Dataset) error {
	colDefs := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		colDefs[i] = fmt.Sprintf(`"%s" %s`, c.Name, sqlTypeFor(ds, c.Key))
	}
	_, err := db.Exec(fmt.Sprintf(`CREATE TABLE "%s" (%s)`, tableName, strings.Join(colDefs, ", ")))
	if err != nil {
		return fmt.Errorf("create table %s: %w", tableName, err)
	}

	if len(ds.Items) == 0 {
		return nil
	}

	placeholders := make([]string, len(ds.Columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(`INSERT INTO "%s" VALUES (%s)`, tableName, strings.Join(placeholders, ","))

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, item := range ds.Items {
		vals := make([]any, len(ds.Columns))
		for i, c := range ds.Columns {
			vals[i] = item[c.Key]
		}
		if _, err := stmt.Exec(vals...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert into %s: %w", tableName, err)
		}
	}
	stmt.Close()
	return tx.Commit()
}

// sqlTypeFor infers a column affinity from the first non-nil value.
func sqlTypeFor(ds *Dataset, key string) string {
	for _, item := range ds.Items {
		switch item[key].(type) {
		case nil:
			continue
		case float64, int64, uint64:
			return "REAL"
		case bool:
			return "INTEGER"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func scanQueryResults(sqlRows *sql.Rows) (*Dataset, error) {
	colNames, err := sqlRows.Columns()
	if err != nil {
		return nil, err
	}

	cols := make([]Column, len(colNames))
	for i, name := range colNames {
		cols[i] = Column{Key: strconv.Itoa(i), Name: name}
	}

	var items []map[string]any
	for sqlRows.Next() {
		ptrs := make([]any, len(colNames))
		for i := range ptrs {
			ptrs[i] = new(any)
		}
		if err := sqlRows.Scan(ptrs...); err != nil {
			return nil, err
		}
		item := make(map[string]any)
		for i := range colNames {
			v := *(ptrs[i].(*any))
			// sqlite driver returns int64/float64/string/[]byte/nil
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			item[strconv.Itoa(i)] = v
		}
		items = append(items, item)
	}
	return &Dataset{Columns: cols, Items: items}, sqlRows.Err()
}
