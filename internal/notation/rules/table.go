package rules

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// Table is the read-only rule table: the common layer plus named domain
// layers. It is safe for concurrent use because nothing mutates it after
// Build.
type Table struct {
	layers map[string][]Rule
	order  []string
}

// Active returns the rules that apply for the given context label: the
// domain layer first, then the common layer. Unknown labels and "general"
// yield the common layer only.
func (t *Table) Active(label string) []Rule {
	common := t.layers[domain.LayerCommon]
	if label == domain.LayerCommon || label == domain.DomainGeneral {
		return common
	}
	dom, ok := t.layers[label]
	if !ok {
		return common
	}
	out := make([]Rule, 0, len(dom)+len(common))
	out = append(out, dom...)
	return append(out, common...)
}

// Layer returns the rules of one layer.
func (t *Table) Layer(name string) ([]Rule, bool) {
	r, ok := t.layers[name]
	return r, ok
}

// HasLayer reports whether name is a registered layer.
func (t *Table) HasLayer(name string) bool {
	_, ok := t.layers[name]
	return ok
}

// Layers returns the layer names in registration order, common first.
func (t *Table) Layers() []string {
	return slices.Clone(t.order)
}

// Domains returns the domain layer names in registration order.
func (t *Table) Domains() []string {
	out := make([]string, 0, len(t.order))
	for _, name := range t.order {
		if name != domain.LayerCommon {
			out = append(out, name)
		}
	}
	return out
}

// Len returns the total number of rules across layers.
func (t *Table) Len() int {
	n := 0
	for _, r := range t.layers {
		n += len(r)
	}
	return n
}

// Builder accumulates rules before producing an immutable Table.
type Builder struct {
	layers map[string][]Rule
	order  []string
}

// NewBuilder creates an empty builder with the common layer registered.
func NewBuilder() *Builder {
	b := &Builder{layers: make(map[string][]Rule)}
	b.ensure(domain.LayerCommon)
	return b
}

func (b *Builder) ensure(layer string) {
	if _, ok := b.layers[layer]; !ok {
		b.layers[layer] = nil
		b.order = append(b.order, layer)
	}
}

// Add appends rules to a layer, lowest priority last.
func (b *Builder) Add(layer string, rules ...Rule) *Builder {
	b.ensure(layer)
	for _, r := range rules {
		r.Layer = layer
		b.layers[layer] = append(b.layers[layer], r)
	}
	return b
}

// Prepend inserts rules ahead of the existing rules of a layer so they take
// priority over built-ins.
func (b *Builder) Prepend(layer string, rules ...Rule) *Builder {
	b.ensure(layer)
	head := make([]Rule, 0, len(rules)+len(b.layers[layer]))
	for _, r := range rules {
		r.Layer = layer
		head = append(head, r)
	}
	b.layers[layer] = append(head, b.layers[layer]...)
	return b
}

// Build validates every rule and returns a Table that shares nothing with
// the builder.
func (b *Builder) Build() (*Table, error) {
	t := &Table{
		layers: make(map[string][]Rule, len(b.layers)),
		order:  slices.Clone(b.order),
	}
	for _, name := range b.order {
		rules := b.layers[name]
		for _, r := range rules {
			if err := r.Validate(); err != nil {
				return nil, fmt.Errorf("layer %s: %w", name, err)
			}
		}
		t.layers[name] = slices.Clone(rules)
	}
	return t, nil
}

// Default returns a builder loaded with the built-in layers.
func Default() *Builder {
	return NewBuilder().
		Add(domain.LayerCommon, commonRules()...).
		Add(domain.LayerCalculus, calculusRules()...).
		Add(domain.LayerLinearAlgebra, linearAlgebraRules()...).
		Add(domain.LayerProbability, probabilityRules()...).
		Add(domain.LayerSetTheory, setTheoryRules()...)
}

// DefaultTable builds the built-in table. The built-ins are known to be
// valid, so failure is a programming error.
func DefaultTable() *Table {
	t, err := Default().Build()
	if err != nil {
		panic(fmt.Sprintf("rules: invalid built-in table: %v", err))
	}
	return t
}
