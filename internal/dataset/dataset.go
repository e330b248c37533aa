// Package dataset supplies the grid's initial data and mirrors committed
// changes back to the owning document. The core engine only ever sees the
// columns/items contract; everything here is a thin I/O collaborator.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Column is the external column contract: a display name plus a stable key
// that identifies the column independent of display position.
type Column struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Dataset is the initial dataset contract: column metadata plus row items
// keyed by column key. Consumed once on load; the grid store owns the data
// afterwards.
type Dataset struct {
	Columns []Column         `json:"columns"`
	Items   []map[string]any `json:"items"`
}

// FetchHTTP retrieves a dataset from a plain GET endpoint returning the
// columns/items JSON payload.
func FetchHTTP(ctx context.Context, url string) (*Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset %s: status %s", url, resp.Status)
	}
	var ds Dataset
	if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if len(ds.Columns) == 0 {
		return nil, fmt.Errorf("dataset has no columns")
	}
	return &ds, nil
}
