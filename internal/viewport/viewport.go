// Package viewport computes the windowed slice of rows to materialize for a
// scroll position, so large datasets only ever render what is visible plus a
// fixed buffer margin.
package viewport

// Config holds the fixed windowing parameters.
type Config struct {
	RowHeight  int
	BufferRows int
}

// Window is one windowing result: the half-open row slice [Start, End) plus
// leading/trailing spacer heights standing in for the unmaterialized rows.
type Window struct {
	Start          int
	End            int
	LeadingSpacer  int
	TrailingSpacer int
}

// Rows returns the number of materialized rows.
func (w Window) Rows() int { return w.End - w.Start }

// Compute derives the window for the current scroll state. totalRows must be
// the post-filter/sort projection length, never the raw row count. The result
// always satisfies 0 <= Start <= End <= totalRows and
// LeadingSpacer + Rows()*RowHeight + TrailingSpacer == totalRows*RowHeight.
func (c Config) Compute(totalRows, scrollOffset, containerHeight int) Window {
	rowHeight := c.RowHeight
	if rowHeight < 1 {
		rowHeight = 1
	}
	if totalRows < 0 {
		totalRows = 0
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if containerHeight < 0 {
		containerHeight = 0
	}

	visible := (containerHeight+rowHeight-1)/rowHeight + 2*c.BufferRows
	if visible > totalRows {
		visible = totalRows
	}

	start := scrollOffset/rowHeight - c.BufferRows
	if start < 0 {
		start = 0
	}
	if start > totalRows {
		start = totalRows
	}

	end := start + visible
	if end > totalRows {
		end = totalRows
	}

	return Window{
		Start:          start,
		End:            end,
		LeadingSpacer:  start * rowHeight,
		TrailingSpacer: (totalRows - end) * rowHeight,
	}
}
