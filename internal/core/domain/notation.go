package domain

// Span is a contiguous region [Start, End) of notation text.
// Spans are immutable and only valid for the text they were produced from;
// rewriting shifts offsets, so callers re-scan rather than reuse spans.
type Span struct {
	// Start is the byte offset of the opening delimiter.
	Start int

	// End is the byte offset one past the closing delimiter.
	End int

	// Depth is the nesting depth of the span within its enclosing construct.
	Depth int
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Text returns the substring of text covered by the span.
func (s Span) Text(text string) string {
	return text[s.Start:s.End]
}

// Cell is one entry of a Grid.
type Cell struct {
	// Raw is the cell text as it appeared in the source.
	Raw string

	// Spoken is the rewritten text of the cell.
	Spoken string

	// Nested is set when the cell is itself an environment.
	Nested *Grid
}

// Grid is the row/column decomposition of one structural environment.
// Every row has the same number of cells as the first row.
type Grid struct {
	// Kind is the environment name (e.g. "pmatrix", "matrix(").
	Kind string

	// Intro is the word spoken once before the cells.
	Intro string

	// Rows holds the cells in row-major order.
	Rows [][]Cell

	// Depth is the nesting depth at which the grid was found.
	Depth int
}

// Dims returns the row and column counts.
func (g Grid) Dims() (rows, cols int) {
	if len(g.Rows) == 0 {
		return 0, 0
	}
	return len(g.Rows), len(g.Rows[0])
}

// Count returns the number of grids in g including nested ones.
func (g Grid) Count() int {
	n := 1
	for _, row := range g.Rows {
		for _, cell := range row {
			if cell.Nested != nil {
				n += cell.Nested.Count()
			}
		}
	}
	return n
}
