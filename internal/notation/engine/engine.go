// Package engine runs the multi-pass rewrite of notation into speech.
//
// Each pass tries the active rules in priority order against the buffer as
// it stood at the start of the pass. A match that overlaps text already
// claimed in the same pass is skipped, and all claims are applied in one
// left-to-right rebuild. Grids are handed to the structural extractor, whose
// cells are rewritten by a nested run of the same engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/notation/delim"
	"github.com/custodia-labs/speakmath/internal/notation/grid"
	"github.com/custodia-labs/speakmath/internal/notation/rules"
)

var commandPattern = regexp.MustCompile(`\\[A-Za-z]+`)

// Engine rewrites text with a rule table. It is immutable and safe for
// concurrent use; all per-call state lives in a run.
type Engine struct {
	table     *rules.Table
	matcher   *delim.Matcher
	extractor *grid.Extractor
	maxPasses int
}

// Option configures the Engine.
type Option func(*Engine)

// WithMaxPasses sets the pass limit. Values below 1 are ignored.
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// WithMaxDepth sets the nesting limit for delimiters and grids.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		e.matcher = delim.New(n)
	}
}

// WithRegistry replaces the grid kinds the engine recognises.
func WithRegistry(r *grid.Registry) Option {
	return func(e *Engine) {
		e.extractor = grid.New(r, nil)
	}
}

// New creates an Engine over table.
func New(table *rules.Table, opts ...Option) *Engine {
	e := &Engine{
		table:     table,
		matcher:   delim.New(domain.DefaultMaxDepth),
		maxPasses: domain.DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(e)
	}
	var registry *grid.Registry
	if e.extractor != nil {
		registry = e.extractor.Registry()
	}
	e.extractor = grid.New(registry, e.matcher)
	return e
}

// Table returns the rule table.
func (e *Engine) Table() *rules.Table {
	return e.table
}

// MaxPasses returns the pass limit.
func (e *Engine) MaxPasses() int {
	return e.maxPasses
}

// Request is the input of one run.
type Request struct {
	Text string

	// Context selects the domain layer; unknown labels use common rules only.
	Context string

	Level domain.AudienceLevel

	// OnPass, when set, receives the buffer after every completed top-level pass.
	OnPass func(buffer string)

	// OnState, when set, observes every state transition of the top-level run.
	OnState func(State)
}

// Result is the outcome of one run.
type Result struct {
	Output       string
	State        State
	Status       domain.Status
	Passes       int
	Grids        int
	Unrecognized []string
	Errors       []error
}

// ErrorStrings returns the error messages.
func (r Result) ErrorStrings() []string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		out[i] = err.Error()
	}
	return out
}

// Run rewrites req.Text until it converges, hits the pass limit or ctx is
// done. It never returns an error: failures are reported in the Result.
func (e *Engine) Run(ctx context.Context, req Request) (res Result) {
	r := &run{
		engine:   e,
		ctx:      ctx,
		rules:    e.table.Active(req.Context),
		level:    req.Level,
		poisoned: make(map[string]bool),
		seen:     make(map[string]bool),
		onState:  req.OnState,
	}
	last := req.Text

	defer func() {
		if p := recover(); p != nil {
			r.fail("panic", domain.NewStructureError(0, "rule", fmt.Errorf("rule panicked: %v", p)))
			res = Result{
				Output:       Tidy(last),
				State:        Scanning,
				Status:       domain.StatusStructureError,
				Passes:       r.passes,
				Grids:        r.grids,
				Unrecognized: r.unknown(last),
				Errors:       r.errs,
			}
		}
	}()

	onPass := func(buf string) {
		last = buf
		if req.OnPass != nil {
			req.OnPass(buf)
		}
	}
	buf, state := r.rewrite(req.Text, 0, onPass)

	status := state.Status()
	if len(r.errs) > 0 {
		status = status.Worst(domain.StatusStructureError)
	}
	if r.capped {
		status = status.Worst(domain.StatusIterationCapped)
	}
	return Result{
		Output:       Tidy(buf),
		State:        state,
		Status:       status,
		Passes:       r.passes,
		Grids:        r.grids,
		Unrecognized: r.unknown(buf),
		Errors:       r.errs,
	}
}

// run holds the mutable state of one call to Run. Nested runs for grid
// cells fork it so their results can be discarded if the grid fails.
type run struct {
	engine   *Engine
	ctx      context.Context
	rules    []rules.Rule
	level    domain.AudienceLevel
	poisoned map[string]bool
	seen     map[string]bool
	onState  func(State)

	passes   int
	grids    int
	capped   bool
	errs     []error
	verbatim []string
}

func (r *run) enter(s State) {
	if r.onState != nil {
		r.onState(s)
	}
}

func (r *run) fork() *run {
	return &run{
		engine:   r.engine,
		ctx:      r.ctx,
		rules:    r.rules,
		level:    r.level,
		poisoned: r.poisoned,
		seen:     make(map[string]bool),
	}
}

func (r *run) merge(child *run) {
	r.grids += child.grids
	r.capped = r.capped || child.capped
	for _, err := range child.errs {
		r.fail(err.Error(), err)
	}
	r.verbatim = append(r.verbatim, child.verbatim...)
}

// fail records err once per key. Offsets move between passes, so the key is
// the offending text rather than the message.
func (r *run) fail(key string, err error) bool {
	if r.seen[key] {
		return false
	}
	r.seen[key] = true
	r.errs = append(r.errs, err)
	return true
}

// rewrite runs passes over text until a terminal state is reached.
func (r *run) rewrite(text string, depth int, onPass func(string)) (string, State) {
	buf := text
	r.enter(Scanning)
	for pass := 1; ; pass++ {
		if pass > r.engine.maxPasses {
			r.enter(IterationCapped)
			return buf, IterationCapped
		}
		if r.ctx.Err() != nil {
			r.enter(TimedOut)
			return buf, TimedOut
		}

		next, err := r.pass(buf, depth)
		if err != nil {
			r.enter(TimedOut)
			return buf, TimedOut
		}
		r.passes++
		if next == buf {
			r.enter(Converged)
			return buf, Converged
		}
		buf = next
		if onPass != nil {
			onPass(buf)
		}
	}
}

type claim struct {
	span domain.Span
	text string
}

// claims tracks which bytes of the pass-start buffer are taken.
type claims struct {
	taken []bool
	list  []claim
}

func newClaims(n int) *claims {
	return &claims{taken: make([]bool, n)}
}

func (c *claims) free(sp domain.Span) bool {
	for i := sp.Start; i < sp.End; i++ {
		if c.taken[i] {
			return false
		}
	}
	return true
}

func (c *claims) add(sp domain.Span, text string) bool {
	if !c.free(sp) {
		return false
	}
	for i := sp.Start; i < sp.End; i++ {
		c.taken[i] = true
	}
	c.list = append(c.list, claim{span: sp, text: text})
	return true
}

func (c *claims) rebuild(buf string) string {
	if len(c.list) == 0 {
		return buf
	}
	sort.Slice(c.list, func(i, j int) bool { return c.list[i].span.Start < c.list[j].span.Start })
	var b strings.Builder
	b.Grow(len(buf))
	pos := 0
	for _, cl := range c.list {
		b.WriteString(buf[pos:cl.span.Start])
		b.WriteString(cl.text)
		pos = cl.span.End
	}
	b.WriteString(buf[pos:])
	return b.String()
}

// pass applies every active rule once. It returns the context error if the
// run was cancelled part way through.
func (r *run) pass(buf string, depth int) (string, error) {
	c := newClaims(len(buf))
	for _, rule := range r.rules {
		if err := r.ctx.Err(); err != nil {
			return buf, err
		}
		if rule.Structural() {
			if err := r.structures(buf, depth, c); err != nil {
				return buf, err
			}
			continue
		}
		matches, faults := rule.Find(buf, r.engine.matcher)
		for _, f := range faults {
			r.reject(buf, f.Span, f.Err, c)
		}
		for _, m := range matches {
			if !c.free(m.Span) {
				continue
			}
			c.add(m.Span, rule.Replace(m, r.level))
		}
	}
	return c.rebuild(buf), nil
}

// structures claims every grid in buf that is not already claimed.
func (r *run) structures(buf string, depth int, c *claims) error {
	registry := r.engine.extractor.Registry()
	for pos := 0; ; {
		_, start, ok := registry.Next(buf, pos)
		if !ok {
			return nil
		}
		_, delimAt, _ := registry.At(buf, start)

		inner, err := r.engine.matcher.MatchDepth(buf, delimAt, depth)
		if err != nil {
			// Unterminated or too deep: keep the opener and let the rest be rewritten.
			end := openerEnd(buf, start, delimAt)
			r.reject(buf, domain.Span{Start: start, End: end}, err, c)
			pos = end
			continue
		}

		span := domain.Span{Start: start, End: inner.End, Depth: depth}
		pos = span.End
		if !c.free(span) {
			continue
		}
		text := buf[span.Start:span.End]
		if r.poisoned[text] {
			c.add(span, text)
			continue
		}

		r.enter(StructureMatched)
		spoken, err := r.extract(buf, start, depth)
		r.enter(Scanning)
		if err != nil {
			if isContextErr(err) {
				return err
			}
			r.fail(text, err)
			r.poisoned[text] = true
			r.verbatim = append(r.verbatim, text)
			c.add(span, text)
			continue
		}
		c.add(span, " "+spoken+" ")
	}
}

// reject keeps an opener that could not be matched verbatim and records its
// error once per opener text and cause.
func (r *run) reject(buf string, sp domain.Span, err error, c *claims) {
	if !c.free(sp) {
		return
	}
	opener := buf[sp.Start:sp.End]
	if r.fail(opener+"\x00"+cause(err), err) {
		r.verbatim = append(r.verbatim, opener)
	}
	c.add(sp, opener)
}

// extract decomposes and renders one grid. Cells are rewritten by a forked
// run whose counters are merged only if the whole grid succeeds.
func (r *run) extract(buf string, start, depth int) (string, error) {
	child := r.fork()
	rewrite := func(_ context.Context, cell string, cellDepth int) (string, error) {
		out, state := child.rewrite(cell, cellDepth, nil)
		switch state {
		case TimedOut:
			return "", r.ctx.Err()
		case IterationCapped:
			child.capped = true
		}
		return out, nil
	}

	g, _, err := r.engine.extractor.Extract(r.ctx, buf, start, depth, rewrite)
	if err != nil {
		return "", err
	}
	r.grids += g.Count()
	r.merge(child)
	return grid.Render(g), nil
}

// openerEnd returns the end of the opener token of the grid at start.
func openerEnd(buf string, start, delimAt int) int {
	if delimAt > start {
		return delimAt + 1
	}
	if op, ok := delim.OpenerAt(buf, start); ok {
		return start + op.Len
	}
	return start + 1
}

func cause(err error) string {
	if u := errors.Unwrap(err); u != nil {
		return u.Error()
	}
	return err.Error()
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// unknown lists the control words left in buf outside text kept verbatim.
func (r *run) unknown(buf string) []string {
	masked := buf
	for _, v := range r.verbatim {
		masked = strings.ReplaceAll(masked, v, " ")
	}
	found := commandPattern.FindAllString(masked, -1)
	if len(found) == 0 {
		return nil
	}
	sort.Strings(found)
	out := found[:0]
	for i, tok := range found {
		if i == 0 || tok != found[i-1] {
			out = append(out, tok)
		}
	}
	return out
}
