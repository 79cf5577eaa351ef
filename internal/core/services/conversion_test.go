package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cachemem "github.com/custodia-labs/speakmath/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/speakmath/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/notation/rules"
)

var general = domain.ConvertOptions{Level: domain.AudienceBasic, DomainHint: domain.DomainGeneral}

func newConversion(t *testing.T, opts ...ConversionOption) (*ConversionService, *cachemem.Cache) {
	t.Helper()
	cache := cachemem.New(64)
	svc, err := NewConversionService(domain.DefaultSettings(), cache, opts...)
	require.NoError(t, err)
	return svc, cache
}

func TestNewConversionService_InvalidSettings(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Engine.MaxDepth = 0

	_, err := NewConversionService(settings, nil)

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewConversionService_MissingRulePack(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.RulePack = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewConversionService(settings, nil)

	assert.Error(t, err)
}

func TestConversionService_Convert(t *testing.T) {
	svc, _ := newConversion(t)

	res, err := svc.Convert(context.Background(), "matrix(a,b;c,d)", general)

	require.NoError(t, err)
	assert.Equal(t, "matrix a b c d", res.Output)
	assert.Equal(t, domain.StatusConverged, res.Status)
	assert.Equal(t, 1, res.Grids)
	assert.Equal(t, "matrix(a,b;c,d)", res.Input)
	assert.False(t, res.CacheHit)
	assert.Equal(t, domain.Classification{Label: domain.DomainGeneral, Confidence: 1, Hinted: true}, res.Context)
	_, err = uuid.Parse(res.ID)
	assert.NoError(t, err)
}

func TestConversionService_ClassifiesWithoutHint(t *testing.T) {
	svc, _ := newConversion(t)

	res, err := svc.Convert(context.Background(), `\int_0^1 x \, dx`, domain.ConvertOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.LayerCalculus, res.Context.Label)
	assert.False(t, res.Context.Hinted)
	assert.Greater(t, res.Context.Confidence, 0.0)
}

func TestConversionService_CacheHit(t *testing.T) {
	svc, cache := newConversion(t)
	ctx := context.Background()

	first, err := svc.Convert(ctx, "x^2", general)
	require.NoError(t, err)
	second, err := svc.Convert(ctx, "  x^2\n", general)
	require.NoError(t, err)

	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Output, second.Output)
	assert.Equal(t, "x squared", second.Output)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "  x^2\n", second.Input)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, int64(1), svc.CacheStats().Hits)
}

func TestConversionService_CacheKeyComponents(t *testing.T) {
	svc, cache := newConversion(t)
	ctx := context.Background()

	_, err := svc.Convert(ctx, `\frac{1}{n}`, general)
	require.NoError(t, err)

	res, err := svc.Convert(ctx, `\frac{1}{n}`, domain.ConvertOptions{Level: domain.AudienceAdvanced, DomainHint: domain.DomainGeneral})
	require.NoError(t, err)
	assert.False(t, res.CacheHit, "level is part of the key")
	assert.Equal(t, "1 over n", res.Output)

	res, err = svc.Convert(ctx, `\frac{1}{n}`, domain.ConvertOptions{DomainHint: domain.LayerCalculus})
	require.NoError(t, err)
	assert.False(t, res.CacheHit, "context is part of the key")

	assert.Equal(t, 3, cache.Len())
}

func TestNormalise(t *testing.T) {
	assert.Equal(t, "a + b", Normalise(" a \t+\n\nb "))
	assert.Equal(t, "caf\u00e9", Normalise("cafe\u0301"))
	assert.Empty(t, Normalise("   "))
}

func TestConversionService_InvalidOptions(t *testing.T) {
	svc, _ := newConversion(t)
	ctx := context.Background()

	tests := []struct {
		name string
		opts domain.ConvertOptions
	}{
		{"level", domain.ConvertOptions{Level: domain.AudienceLevel(7)}},
		{"unknown domain", domain.ConvertOptions{DomainHint: "topology"}},
		{"common is not a domain", domain.ConvertOptions{DomainHint: domain.LayerCommon}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Convert(ctx, "x", tt.opts)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Nil(t, res)
		})
	}
}

func TestConversionService_UnrecognizedTokensRecorded(t *testing.T) {
	svc, _ := newConversion(t)
	tokens := NewTokenService(memory.NewTokenStore())
	svc.SetTokenService(tokens)
	ctx := context.Background()

	res, err := svc.Convert(ctx, `\foo + x`, general)
	require.NoError(t, err)
	assert.Equal(t, `\foo plus x`, res.Output)
	assert.Equal(t, []string{`\foo`}, res.Unrecognized)

	// A cache hit is not a new sighting.
	_, err = svc.Convert(ctx, `\foo + x`, general)
	require.NoError(t, err)

	rec, err := tokens.Get(ctx, `\foo`)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
	assert.Equal(t, `\foo + x`, rec.Sample)
}

func TestConversionService_TimedOutNotCached(t *testing.T) {
	svc, cache := newConversion(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Convert(ctx, "a + b", general)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusTimedOut, res.Status)
	assert.Equal(t, "a + b", res.Output)
	assert.Zero(t, cache.Len())
}

func TestConversionService_SlowRuleTimesOut(t *testing.T) {
	slow := rules.CommandFunc("slow", `\slow`, nil, func([]string, domain.AudienceLevel) string {
		time.Sleep(100 * time.Millisecond)
		return "slow"
	})
	table, err := rules.Default().Prepend(domain.LayerCommon, slow).Build()
	require.NoError(t, err)

	settings := domain.DefaultSettings()
	settings.Timeout = domain.TimeoutSettings{Min: 10 * time.Millisecond, Max: 10 * time.Millisecond}
	svc, err := NewConversionService(settings, cachemem.New(8), WithRuleTable(table))
	require.NoError(t, err)

	start := time.Now()
	res, err := svc.Convert(context.Background(), `x + \slow`, general)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusTimedOut, res.Status)
	assert.Less(t, time.Since(start), 90*time.Millisecond, "caller is not held by the worker")
	assert.Zero(t, svc.CacheStats().Size)
}

func TestConversionService_PanickingRule(t *testing.T) {
	boom := rules.CommandFunc("boom", `\boom`, nil, func([]string, domain.AudienceLevel) string {
		panic("transform exploded")
	})
	table, err := rules.Default().Prepend(domain.LayerCommon, boom).Build()
	require.NoError(t, err)
	svc, _ := newConversion(t, WithRuleTable(table))

	var res *domain.ProcessingResult
	require.NotPanics(t, func() {
		res, err = svc.Convert(context.Background(), `x + \boom`, general)
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStructureError, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "transform exploded")
}

func TestConversionService_RulePack(t *testing.T) {
	pack := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(pack, []byte(`
rules:
  - name: hbar
    literal: '\hbar'
    basic: h bar
`), 0600))

	settings := domain.DefaultSettings()
	settings.RulePack = pack
	svc, err := NewConversionService(settings, nil)
	require.NoError(t, err)

	res, err := svc.Convert(context.Background(), `\hbar`, general)
	require.NoError(t, err)
	assert.Equal(t, "h bar", res.Output)
	assert.Empty(t, res.Unrecognized)
	assert.Equal(t, domain.CacheStats{}, svc.CacheStats())
}

func TestConversionService_DomainsAndRules(t *testing.T) {
	svc, _ := newConversion(t)

	assert.Equal(t, []string{
		domain.DomainGeneral,
		domain.LayerCalculus,
		domain.LayerLinearAlgebra,
		domain.LayerProbability,
		domain.LayerSetTheory,
	}, svc.Domains())

	all, err := svc.Rules("")
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, domain.LayerCommon, all[0].Layer)
	assert.Equal(t, 0, all[0].Priority)

	calc, err := svc.Rules(domain.LayerCalculus)
	require.NoError(t, err)
	for i, r := range calc {
		assert.Equal(t, domain.LayerCalculus, r.Layer)
		assert.Equal(t, i, r.Priority)
		assert.NotEmpty(t, r.Match)
	}

	_, err = svc.Rules("topology")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversionService_ConcurrentIdenticalInputs(t *testing.T) {
	svc, cache := newConversion(t)

	var wg sync.WaitGroup
	outputs := make([]string, 32)
	for i := range outputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Convert(context.Background(), `\sqrt{x} + \alpha`, general)
			if assert.NoError(t, err) {
				outputs[i] = res.Output
			}
		}(i)
	}
	wg.Wait()

	for _, out := range outputs {
		assert.Equal(t, outputs[0], out)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestConversionService_StructureErrorNotCached(t *testing.T) {
	svc, cache := newConversion(t)

	res, err := svc.Convert(context.Background(), `x + {y`, general)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusStructureError, res.Status)
	assert.NotEmpty(t, res.Errors)
	assert.Zero(t, cache.Len())
}

func TestConversionService_CancelledCallerDoesNotAffectJoinedCaller(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	hold := rules.CommandFunc("hold", `\hold`, nil, func([]string, domain.AudienceLevel) string {
		once.Do(func() { close(entered) })
		<-release
		return "held"
	})
	table, err := rules.Default().Prepend(domain.LayerCommon, hold).Build()
	require.NoError(t, err)

	settings := domain.DefaultSettings()
	settings.Timeout = domain.TimeoutSettings{Min: 5 * time.Second, Max: 5 * time.Second}
	cache := cachemem.New(8)
	svc, err := NewConversionService(settings, cache, WithRuleTable(table))
	require.NoError(t, err)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	doneA := make(chan *domain.ProcessingResult, 1)
	go func() {
		res, _ := svc.Convert(ctxA, `x + \hold`, general)
		doneA <- res
	}()
	<-entered

	doneB := make(chan *domain.ProcessingResult, 1)
	go func() {
		res, _ := svc.Convert(context.Background(), `x + \hold`, general)
		doneB <- res
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	var resA *domain.ProcessingResult
	select {
	case resA = <-doneA:
	case <-time.After(time.Second):
		t.Fatal("cancelled caller still waiting")
	}
	require.NotNil(t, resA)
	assert.Equal(t, domain.StatusTimedOut, resA.Status)
	assert.Equal(t, `x + \hold`, resA.Output)

	close(release)
	resB := <-doneB
	require.NotNil(t, resB)
	assert.Equal(t, domain.StatusConverged, resB.Status)
	assert.Equal(t, "x plus held", resB.Output)
	assert.Equal(t, 1, cache.Len())
}
