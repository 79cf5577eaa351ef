package grid

import (
	"strings"

	"github.com/custodia-labs/speakmath/internal/notation/delim"
)

// Syntax distinguishes the two ways a grid can be written.
type Syntax int

const (
	// SyntaxEnvironment is \begin{name} ... \end{name}.
	SyntaxEnvironment Syntax = iota

	// SyntaxShorthand is name( ... ).
	SyntaxShorthand
)

// Kind describes one family of grid constructs.
type Kind struct {
	// Name is the environment name or shorthand function name.
	Name string

	Syntax Syntax

	// RowSep splits rows; ColSep splits cells within a row.
	RowSep string
	ColSep string

	// Intro is spoken once before the cells.
	Intro string

	// ColumnSpec is true when the environment takes a leading {cc|c} argument.
	ColumnSpec bool
}

// Label returns the name used in errors and grids.
func (k Kind) Label() string {
	if k.Syntax == SyntaxShorthand {
		return k.Name + "("
	}
	return k.Name
}

// DefaultKinds returns the built-in grid kinds.
func DefaultKinds() []Kind {
	env := func(name, intro string) Kind {
		return Kind{Name: name, Syntax: SyntaxEnvironment, RowSep: `\\`, ColSep: "&", Intro: intro}
	}
	short := func(name, intro string) Kind {
		return Kind{Name: name, Syntax: SyntaxShorthand, RowSep: ";", ColSep: ",", Intro: intro}
	}
	array := env("array", "array")
	array.ColumnSpec = true

	return []Kind{
		env("matrix", "matrix"),
		env("pmatrix", "matrix"),
		env("bmatrix", "matrix"),
		env("Bmatrix", "matrix"),
		env("smallmatrix", "matrix"),
		env("vmatrix", "determinant"),
		env("Vmatrix", "norm"),
		env("cases", "cases"),
		array,
		short("matrix", "matrix"),
		short("vector", "vector"),
	}
}

// Registry resolves grid openers in text. It is read-only after construction.
type Registry struct {
	env       map[string]Kind
	shorthand map[string]Kind
}

// NewRegistry creates a registry from the given kinds; later kinds with the
// same name and syntax replace earlier ones.
func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{
		env:       make(map[string]Kind),
		shorthand: make(map[string]Kind),
	}
	for _, k := range kinds {
		if k.Syntax == SyntaxShorthand {
			r.shorthand[k.Name] = k
		} else {
			r.env[k.Name] = k
		}
	}
	return r
}

// DefaultRegistry returns a registry of DefaultKinds.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultKinds()...)
}

// At reports whether a grid opener starts at text[i]. It returns the kind
// and the offset of the delimiter the matcher should be pointed at.
func (r *Registry) At(text string, i int) (Kind, int, bool) {
	if i < 0 || i >= len(text) {
		return Kind{}, 0, false
	}
	if text[i] == '\\' {
		op, ok := delim.OpenerAt(text, i)
		if !ok || op.Kind != delim.KindEnvironment {
			return Kind{}, 0, false
		}
		k, ok := r.env[op.Name]
		return k, i, ok
	}
	if !delim.IsLetter(text[i]) {
		return Kind{}, 0, false
	}
	if i > 0 && (delim.IsLetter(text[i-1]) || text[i-1] == '\\') {
		return Kind{}, 0, false
	}
	j := i
	for j < len(text) && delim.IsLetter(text[j]) {
		j++
	}
	if j >= len(text) || text[j] != '(' {
		return Kind{}, 0, false
	}
	k, ok := r.shorthand[text[i:j]]
	return k, j, ok
}

// Next returns the offset of the first grid opener at or after from.
func (r *Registry) Next(text string, from int) (Kind, int, bool) {
	for i := max(from, 0); i < len(text); i++ {
		c := text[i]
		if c != '\\' && !delim.IsLetter(c) {
			continue
		}
		if k, _, ok := r.At(text, i); ok {
			return k, i, true
		}
		if c == '\\' {
			// Step over the whole control word so \vmatrix-like names are not re-read as shorthand.
			i += len(delim.CommandAt(text, i)) - 1
		}
	}
	return Kind{}, 0, false
}

// IsOpener reports whether trimmed cell text starts with a grid opener.
func (r *Registry) IsOpener(text string) bool {
	_, _, ok := r.At(strings.TrimSpace(text), 0)
	return ok
}
