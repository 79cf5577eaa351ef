package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driven"
	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
	"github.com/custodia-labs/speakmath/internal/logger"
	"github.com/custodia-labs/speakmath/internal/notation/classify"
	"github.com/custodia-labs/speakmath/internal/notation/engine"
	"github.com/custodia-labs/speakmath/internal/notation/guard"
	"github.com/custodia-labs/speakmath/internal/notation/rules"
)

// Ensure ConversionService implements the interface.
var _ driving.ConversionService = (*ConversionService)(nil)

// ConversionService runs the notation pipeline for one input: classify,
// consult the cache, and on a miss run the rewrite engine under the
// timeout guard.
type ConversionService struct {
	settings   domain.Settings
	table      *rules.Table
	engine     *engine.Engine
	classifier *classify.Classifier
	guard      *guard.Guard
	cache      driven.ResultCache
	tokens     driving.TokenService
	flight     singleflight.Group
	now        func() time.Time
}

// ConversionOption configures a ConversionService.
type ConversionOption func(*ConversionService)

// WithRuleTable replaces the rule table built from settings.
func WithRuleTable(t *rules.Table) ConversionOption {
	return func(s *ConversionService) {
		s.table = t
	}
}

// WithClassifier replaces the default context classifier.
func WithClassifier(c *classify.Classifier) ConversionOption {
	return func(s *ConversionService) {
		s.classifier = c
	}
}

// WithConversionClock overrides the clock used for elapsed times.
func WithConversionClock(now func() time.Time) ConversionOption {
	return func(s *ConversionService) {
		s.now = now
	}
}

// NewConversionService creates a conversion service. Settings are
// validated and, unless a table is supplied, the built-in rule table is
// built with the configured rule pack prepended. cache may be nil.
func NewConversionService(
	settings domain.Settings,
	cache driven.ResultCache,
	opts ...ConversionOption,
) (*ConversionService, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s := &ConversionService{
		settings: settings,
		cache:    cache,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.table == nil {
		table, err := BuildRuleTable(settings.RulePack)
		if err != nil {
			return nil, err
		}
		s.table = table
	}
	if s.classifier == nil {
		s.classifier = classify.Default(settings.Classifier.MinConfidence)
	}
	s.engine = engine.New(s.table,
		engine.WithMaxPasses(settings.Engine.MaxPasses),
		engine.WithMaxDepth(settings.Engine.MaxDepth),
	)
	s.guard = guard.New(settings.Timeout)

	return s, nil
}

// BuildRuleTable returns the built-in table with the rule pack at path, if
// any, taking priority over built-in rules.
func BuildRuleTable(path string) (*rules.Table, error) {
	b := rules.Default()
	if path != "" {
		if err := rules.LoadPackFile(b, path); err != nil {
			return nil, err
		}
	}
	table, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build rule table: %w", err)
	}
	return table, nil
}

// SetTokenService enables recording of unrecognized tokens.
func (s *ConversionService) SetTokenService(tokens driving.TokenService) {
	s.tokens = tokens
}

// Convert rewrites text for an audience. The returned error is non-nil only
// for an invalid audience level or an unknown domain hint.
func (s *ConversionService) Convert(
	ctx context.Context,
	text string,
	opts domain.ConvertOptions,
) (*domain.ProcessingResult, error) {
	start := s.now()

	if !opts.Level.IsValid() {
		return nil, fmt.Errorf("%w: unknown audience level %d", domain.ErrInvalidInput, int(opts.Level))
	}

	input := Normalise(text)
	class, err := s.classify(input, opts.DomainHint)
	if err != nil {
		return nil, err
	}
	logger.Debug("context %s (confidence %.2f, hinted %t)", class.Label, class.Confidence, class.Hinted)

	key := domain.CacheKey{Input: input, Context: class.Label, Level: opts.Level}

	if s.cache != nil {
		if entry, ok := s.cache.Lookup(key); ok {
			logger.Debug("cache hit (%d hits)", entry.Hits)
			res := fromEntry(entry)
			res.CacheHit = true
			return s.finish(res, text, class, opts.Level, start), nil
		}
		logger.Debug("cache miss")
	}

	if ctx.Err() != nil {
		return s.finish(interrupted(key), text, class, opts.Level, start), nil
	}

	// The shared computation must not inherit one caller's cancellation; the
	// guard's budget still bounds it.
	ch := s.flight.DoChan(flightKey(key), func() (any, error) {
		return s.process(context.WithoutCancel(ctx), key, text, class), nil
	})

	var res *domain.ProcessingResult
	select {
	case r := <-ch:
		if r.Shared {
			logger.Debug("joined an in-flight conversion")
		}
		res = cloneResult(r.Val.(*domain.ProcessingResult))
	case <-ctx.Done():
		logger.Debug("caller gave up on an in-flight conversion")
		res = interrupted(key)
	}
	return s.finish(res, text, class, opts.Level, start), nil
}

// interrupted is the result for a caller whose context ended before its
// conversion finished: the normalised input, reported as timed out.
func interrupted(key domain.CacheKey) *domain.ProcessingResult {
	return &domain.ProcessingResult{
		Output: engine.Tidy(key.Input),
		Status: domain.StatusTimedOut,
	}
}

// process runs the engine for a cache miss. Only converged and
// iteration-capped outcomes are cached; timeouts and structure errors are
// recomputed.
func (s *ConversionService) process(
	ctx context.Context,
	key domain.CacheKey,
	text string,
	class domain.Classification,
) *domain.ProcessingResult {
	out := s.guard.Run(ctx, key.Input, func(ctx context.Context, publish func(string)) engine.Result {
		return s.engine.Run(ctx, engine.Request{
			Text:    key.Input,
			Context: key.Context,
			Level:   key.Level,
			OnPass:  publish,
		})
	})
	logger.Debug("rewrite %s after %d passes, %d grids", out.Status, out.Passes, out.Grids)

	res := &domain.ProcessingResult{
		Input:        text,
		Output:       out.Output,
		Status:       out.Status,
		Unrecognized: out.Unrecognized,
		Passes:       out.Passes,
		Grids:        out.Grids,
		Context:      class,
		Level:        key.Level,
		Errors:       out.ErrorStrings(),
	}

	if s.cache != nil && cacheable(res.Status) {
		s.cache.Insert(key, domain.CacheEntry{
			Output:       res.Output,
			Status:       res.Status,
			Unrecognized: res.Unrecognized,
			Passes:       res.Passes,
			Grids:        res.Grids,
			Confidence:   class.Confidence,
			Errors:       res.Errors,
		})
	}

	if s.tokens != nil && len(res.Unrecognized) > 0 {
		if err := s.tokens.Record(context.WithoutCancel(ctx), res); err != nil {
			logger.Warn("token log: %v", err)
		}
	}

	return res
}

func cacheable(status domain.Status) bool {
	return status == domain.StatusConverged || status == domain.StatusIterationCapped
}

func (s *ConversionService) finish(
	res *domain.ProcessingResult,
	text string,
	class domain.Classification,
	level domain.AudienceLevel,
	start time.Time,
) *domain.ProcessingResult {
	res.ID = uuid.New().String()
	res.Input = text
	res.Context = class
	res.Level = level
	res.Elapsed = s.now().Sub(start)
	return res
}

// classify resolves the context label. A hint must name a domain layer or
// "general"; without a hint the classifier decides.
func (s *ConversionService) classify(input, hint string) (domain.Classification, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return s.classifier.Classify(input), nil
	}
	if hint == domain.DomainGeneral || (hint != domain.LayerCommon && s.table.HasLayer(hint)) {
		return domain.Classification{Label: hint, Confidence: 1, Hinted: true}, nil
	}
	return domain.Classification{}, fmt.Errorf("%w: unknown domain %q", domain.ErrInvalidInput, hint)
}

// Domains returns the labels accepted as domain hints.
func (s *ConversionService) Domains() []string {
	return append([]string{domain.DomainGeneral}, s.table.Domains()...)
}

// Rules lists rules in priority order. An empty layer lists every layer.
func (s *ConversionService) Rules(layer string) ([]domain.RuleInfo, error) {
	layers := s.table.Layers()
	if layer != "" {
		if !s.table.HasLayer(layer) {
			return nil, fmt.Errorf("layer %q: %w", layer, domain.ErrNotFound)
		}
		layers = []string{layer}
	}

	var out []domain.RuleInfo
	for _, name := range layers {
		rs, _ := s.table.Layer(name)
		for i, r := range rs {
			out = append(out, domain.RuleInfo{
				Layer:    name,
				Priority: i,
				Name:     r.Name,
				Match:    r.Match.Kind.String(),
				Trigger:  trigger(r),
			})
		}
	}
	return out, nil
}

func trigger(r rules.Rule) string {
	switch {
	case r.Match.Token != "":
		return r.Match.Token
	case r.Match.Pattern != nil:
		return r.Match.Pattern.String()
	default:
		return ""
	}
}

// CacheStats returns the result cache counters.
func (s *ConversionService) CacheStats() domain.CacheStats {
	if s.cache == nil {
		return domain.CacheStats{}
	}
	return s.cache.Stats()
}

// Normalise returns the cache form of text: NFC with whitespace runs
// collapsed to one space and trimmed.
func Normalise(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

func flightKey(k domain.CacheKey) string {
	return fmt.Sprintf("%d\x00%s\x00%s", k.Level, k.Context, k.Input)
}

func fromEntry(e domain.CacheEntry) *domain.ProcessingResult {
	return &domain.ProcessingResult{
		Output:       e.Output,
		Status:       e.Status,
		Unrecognized: e.Unrecognized,
		Passes:       e.Passes,
		Grids:        e.Grids,
		Errors:       e.Errors,
	}
}

func cloneResult(r *domain.ProcessingResult) *domain.ProcessingResult {
	c := *r
	if r.Unrecognized != nil {
		c.Unrecognized = append([]string(nil), r.Unrecognized...)
	}
	if r.Errors != nil {
		c.Errors = append([]string(nil), r.Errors...)
	}
	return &c
}
