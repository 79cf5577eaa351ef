package grid

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/notation/delim"
)

func newTestExtractor(opts ...Option) *Extractor {
	return New(DefaultRegistry(), delim.New(16), opts...)
}

func TestExtract_Shorthand2x2(t *testing.T) {
	e := newTestExtractor()
	text := "matrix(a,b;c,d)"

	g, span, err := e.Extract(context.Background(), text, 0, 0, nil)
	require.NoError(t, err)

	want := domain.Grid{
		Kind:  "matrix(",
		Intro: "matrix",
		Rows: [][]domain.Cell{
			{{Raw: "a", Spoken: "a"}, {Raw: "b", Spoken: "b"}},
			{{Raw: "c", Spoken: "c"}, {Raw: "d", Spoken: "d"}},
		},
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, domain.Span{Start: 0, End: len(text)}, span)
	assert.Equal(t, "matrix a b c d", Render(g))
}

func TestExtract_NestedGridsInnermostFirst(t *testing.T) {
	var resolved []string
	e := newTestExtractor(WithResolveHook(func(g domain.Grid) {
		resolved = append(resolved, Render(g))
	}))
	text := "matrix(matrix(a,b;c,d), matrix(e,f;g,h))"

	g, _, err := e.Extract(context.Background(), text, 0, 0, nil)
	require.NoError(t, err)

	rendered := Render(g)
	assert.Equal(t, "matrix matrix a b c d matrix e f g h", rendered)
	assert.Equal(t, 3, strings.Count(rendered, "matrix"))
	assert.Equal(t, 3, g.Count())

	require.Len(t, resolved, 3)
	assert.Equal(t, "matrix a b c d", resolved[0])
	assert.Equal(t, "matrix e f g h", resolved[1])
	assert.Equal(t, rendered, resolved[2])

	rows, cols := g.Dims()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 2, cols)
	require.NotNil(t, g.Rows[0][0].Nested)
	assert.Equal(t, 1, g.Rows[0][0].Nested.Depth)
}

func TestExtract_DeepNestingCountsEveryGrid(t *testing.T) {
	var count int
	e := newTestExtractor(WithResolveHook(func(domain.Grid) { count++ }))

	text := "x"
	for i := 0; i < 5; i++ {
		text = `\begin{pmatrix}` + text + `\end{pmatrix}`
	}

	g, _, err := e.Extract(context.Background(), text, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, "matrix matrix matrix matrix matrix x", Render(g))
}

func TestExtract_LaTeXEnvironment(t *testing.T) {
	e := newTestExtractor()
	text := `\begin{bmatrix} 1 & 0 \\ 0 & 1 \\ \end{bmatrix}`

	g, span, err := e.Extract(context.Background(), text, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, len(text), span.End)
	assert.Equal(t, "bmatrix", g.Kind)
	assert.Equal(t, "matrix 1 0 0 1", Render(g))
}

func TestExtract_VMatrixIntro(t *testing.T) {
	e := newTestExtractor()
	g, _, err := e.Extract(context.Background(), `\begin{vmatrix} a & b \\ c & d \end{vmatrix}`, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "determinant a b c d", Render(g))
}

func TestExtract_ArraySkipsColumnSpec(t *testing.T) {
	e := newTestExtractor()
	g, _, err := e.Extract(context.Background(), `\begin{array}{cc} a & b \\ \hline c & d \end{array}`, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "array a b c d", Render(g))
}

func TestExtract_EmptyCellsKeepColumns(t *testing.T) {
	e := newTestExtractor()
	g, _, err := e.Extract(context.Background(), "matrix(a,,c;d,e,f)", 0, 0, nil)
	require.NoError(t, err)

	rows, cols := g.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, "", g.Rows[0][1].Spoken)
	assert.Equal(t, "matrix a c d e f", Render(g))
}

func TestExtract_RaggedRowsIsStructureError(t *testing.T) {
	e := newTestExtractor()

	for _, text := range []string{
		"matrix(a,b;c)",
		`\begin{pmatrix} a & b \\ c \end{pmatrix}`,
		"matrix(matrix(a,b;c), d)",
	} {
		t.Run(text, func(t *testing.T) {
			_, _, err := e.Extract(context.Background(), text, 0, 0, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrRaggedGrid)

			var se *domain.StructureError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestExtract_Unterminated(t *testing.T) {
	e := newTestExtractor()
	_, _, err := e.Extract(context.Background(), "matrix(a,b;c,d", 0, 0, nil)
	assert.ErrorIs(t, err, domain.ErrUnterminated)
}

func TestExtract_NotAGrid(t *testing.T) {
	e := newTestExtractor()
	_, _, err := e.Extract(context.Background(), "f(a,b)", 0, 0, nil)
	assert.ErrorIs(t, err, domain.ErrNotOpener)
}

func TestExtract_MaxDepth(t *testing.T) {
	e := New(DefaultRegistry(), delim.New(3))
	text := "matrix(matrix(matrix(matrix(a))))"
	_, _, err := e.Extract(context.Background(), text, 0, 0, nil)
	assert.ErrorIs(t, err, domain.ErrMaxDepth)
}

func TestExtract_RewritesPlainCells(t *testing.T) {
	e := newTestExtractor()
	var depths []int
	rewrite := func(_ context.Context, cell string, depth int) (string, error) {
		depths = append(depths, depth)
		return strings.ToUpper(cell), nil
	}

	g, _, err := e.Extract(context.Background(), "vector( x , y )", 0, 2, rewrite)
	require.NoError(t, err)
	assert.Equal(t, "vector X Y", Render(g))
	assert.Equal(t, []int{3, 3}, depths)
}

func TestExtract_GridFollowedByTextGoesToRewriter(t *testing.T) {
	e := newTestExtractor()
	var seen []string
	rewrite := func(_ context.Context, cell string, _ int) (string, error) {
		seen = append(seen, cell)
		return "R", nil
	}

	g, _, err := e.Extract(context.Background(), "vector(matrix(a) x, b)", 0, 0, rewrite)
	require.NoError(t, err)
	assert.Equal(t, []string{"matrix(a) x", "b"}, seen)
	assert.Equal(t, "vector R R", Render(g))
}

func TestExtract_CancelledContext(t *testing.T) {
	e := newTestExtractor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.Extract(ctx, "matrix(a,b)", 0, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_At(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name    string
		text    string
		i       int
		kind    string
		delimAt int
		ok      bool
	}{
		{"shorthand", "matrix(a)", 0, "matrix(", 6, true},
		{"shorthand mid text", "2 vector(1)", 2, "vector(", 8, true},
		{"environment", `\begin{cases} x \end{cases}`, 0, "cases", 0, true},
		{"unknown environment", `\begin{align} x \end{align}`, 0, "", 0, false},
		{"longer word", "mymatrix(a)", 2, "", 0, false},
		{"command prefix", `\matrix(a)`, 1, "", 0, false},
		{"no paren", "matrix a", 0, "", 0, false},
		{"unknown function", "f(a)", 0, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, at, ok := r.At(tt.text, tt.i)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.kind, k.Label())
				assert.Equal(t, tt.delimAt, at)
			}
		})
	}
}

func TestRegistry_Next(t *testing.T) {
	r := DefaultRegistry()

	k, at, ok := r.Next(`x + \vmatrix \begin{vmatrix} a \end{vmatrix}`, 0)
	require.True(t, ok)
	assert.Equal(t, "vmatrix", k.Name)
	assert.Equal(t, 13, at)

	_, _, ok = r.Next("no grids here (a,b)", 0)
	assert.False(t, ok)

	_, at, ok = r.Next("matrix(a) matrix(b)", 1)
	require.True(t, ok)
	assert.Equal(t, 10, at)
}

func TestRegistry_IsOpener(t *testing.T) {
	r := DefaultRegistry()
	assert.True(t, r.IsOpener("  matrix(a)"))
	assert.False(t, r.IsOpener("a + b"))
}

func TestNewRegistry_Override(t *testing.T) {
	r := NewRegistry(append(DefaultKinds(), Kind{
		Name: "matrix", Syntax: SyntaxShorthand, RowSep: ";", ColSep: ",", Intro: "grid",
	})...)
	e := New(r, delim.New(8))
	g, _, err := e.Extract(context.Background(), "matrix(a)", 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "grid a", Render(g))
}

func TestExtract_GridFollowedByTextIsRewrittenOnce(t *testing.T) {
	var resolved int
	e := newTestExtractor(WithResolveHook(func(domain.Grid) { resolved++ }))

	var cells []string
	rewrite := func(_ context.Context, cell string, _ int) (string, error) {
		cells = append(cells, cell)
		return "spoken", nil
	}

	g, _, err := e.Extract(context.Background(), "matrix(matrix(a,b) z)", 0, 0, rewrite)
	require.NoError(t, err)

	assert.Equal(t, []string{"matrix(a,b) z"}, cells, "inner grid is left to the rewriter")
	assert.Equal(t, 1, resolved)
	assert.Equal(t, 1, g.Count())
	assert.Nil(t, g.Rows[0][0].Nested)
	assert.Equal(t, "matrix spoken", Render(g))
}
