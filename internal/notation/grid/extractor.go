// Package grid decomposes matrix-like environments into row/column grids
// and renders them as spoken text.
package grid

import (
	"context"
	"strings"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/notation/delim"
)

// CellRewriter turns the raw text of one cell into spoken text.
// depth is the nesting depth of the cell's enclosing grid plus one.
type CellRewriter func(ctx context.Context, cell string, depth int) (string, error)

// Extractor decomposes grid spans. It holds no per-call state and is safe
// for concurrent use once constructed.
type Extractor struct {
	registry  *Registry
	matcher   *delim.Matcher
	onResolve func(domain.Grid)
}

// Option configures the Extractor.
type Option func(*Extractor)

// WithResolveHook registers fn to observe every grid as it is resolved.
// Nested grids are reported before the grids that contain them.
func WithResolveHook(fn func(domain.Grid)) Option {
	return func(e *Extractor) {
		e.onResolve = fn
	}
}

// New creates an Extractor.
func New(registry *Registry, matcher *delim.Matcher, opts ...Option) *Extractor {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if matcher == nil {
		matcher = delim.New(domain.DefaultMaxDepth)
	}
	e := &Extractor{registry: registry, matcher: matcher}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the kind registry used by the extractor.
func (e *Extractor) Registry() *Registry {
	return e.registry
}

// Extract decomposes the grid whose opener starts at text[start].
// It returns the grid and the span it covers in text. Cells that are
// themselves grids are extracted first; other cells go through rewrite.
func (e *Extractor) Extract(
	ctx context.Context, text string, start, depth int, rewrite CellRewriter,
) (domain.Grid, domain.Span, error) {
	kind, delimAt, ok := e.registry.At(text, start)
	if !ok {
		return domain.Grid{}, domain.Span{}, domain.NewStructureError(start, "grid", domain.ErrNotOpener)
	}

	inner, err := e.matcher.MatchDepth(text, delimAt, depth)
	if err != nil {
		return domain.Grid{}, domain.Span{}, err
	}
	span := domain.Span{Start: start, End: inner.End, Depth: depth}

	body := delim.Interior(text, inner)
	if kind.ColumnSpec {
		body = stripColumnSpec(body, e.matcher)
	}

	g := domain.Grid{Kind: kind.Label(), Intro: kind.Intro, Depth: depth}
	width := -1
	for _, rowText := range splitRows(body, kind.RowSep) {
		rawCells := delim.SplitTopLevel(rowText, kind.ColSep)
		if width == -1 {
			width = len(rawCells)
		} else if len(rawCells) != width {
			return domain.Grid{}, domain.Span{}, domain.NewStructureError(start, kind.Label(), domain.ErrRaggedGrid)
		}

		row := make([]domain.Cell, 0, len(rawCells))
		for _, raw := range rawCells {
			if err := ctx.Err(); err != nil {
				return domain.Grid{}, domain.Span{}, err
			}
			cell, err := e.cell(ctx, raw, depth+1, rewrite)
			if err != nil {
				return domain.Grid{}, domain.Span{}, err
			}
			row = append(row, cell)
		}
		g.Rows = append(g.Rows, row)
	}

	if e.onResolve != nil {
		e.onResolve(g)
	}
	return g, span, nil
}

// cell resolves one cell: a nested grid recursively, anything else via rewrite.
func (e *Extractor) cell(ctx context.Context, raw string, depth int, rewrite CellRewriter) (domain.Cell, error) {
	trimmed := strings.TrimSpace(raw)
	c := domain.Cell{Raw: raw}

	if e.coversCell(trimmed, depth) {
		nested, _, err := e.Extract(ctx, trimmed, 0, depth, rewrite)
		if err != nil {
			return c, err
		}
		c.Nested = &nested
		c.Spoken = Render(nested)
		return c, nil
	}

	if rewrite == nil {
		c.Spoken = trimmed
		return c, nil
	}
	spoken, err := rewrite(ctx, trimmed, depth)
	if err != nil {
		return c, err
	}
	c.Spoken = strings.TrimSpace(spoken)
	return c, nil
}

// coversCell reports whether trimmed is exactly one grid. A grid followed by
// more text is left to the rewriter so it is resolved only once.
func (e *Extractor) coversCell(trimmed string, depth int) bool {
	_, delimAt, ok := e.registry.At(trimmed, 0)
	if !ok {
		return false
	}
	inner, err := e.matcher.MatchDepth(trimmed, delimAt, depth)
	if err != nil {
		return true
	}
	return inner.End == len(trimmed)
}

// splitRows splits the body into rows, dropping a trailing empty row left
// by a final separator and any \hline rules.
func splitRows(body, sep string) []string {
	rows := delim.SplitTopLevel(body, sep)
	for i, r := range rows {
		rows[i] = strings.ReplaceAll(r, `\hline`, "")
	}
	if len(rows) > 1 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// stripColumnSpec removes the {lcr} argument of array-like environments.
func stripColumnSpec(body string, m *delim.Matcher) string {
	arg, ok, err := m.ReadArgument(body, 0)
	if err != nil || !ok || !arg.Grouped {
		return body
	}
	return body[arg.End:]
}

// Render speaks a grid: its introductory word once, then every cell in
// row-major order. Nested grids contribute their own introductory word.
func Render(g domain.Grid) string {
	words := []string{g.Intro}
	for _, row := range g.Rows {
		for _, cell := range row {
			if s := strings.TrimSpace(cell.Spoken); s != "" {
				words = append(words, s)
			}
		}
	}
	return strings.Join(words, " ")
}
