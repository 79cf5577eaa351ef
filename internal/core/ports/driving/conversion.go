package driving

import (
	"context"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// ConversionService turns notation into spoken text.
type ConversionService interface {
	// Convert rewrites text for the given audience. opts.DomainHint, when
	// set, overrides the context classifier. The error is non-nil only for
	// invalid options; processing outcomes are reported in the result Status.
	Convert(ctx context.Context, text string, opts domain.ConvertOptions) (*domain.ProcessingResult, error)

	// Domains returns the context labels accepted as hints.
	Domains() []string

	// Rules lists the active rule table, optionally filtered to one layer.
	Rules(layer string) ([]domain.RuleInfo, error)

	// CacheStats returns the result cache counters.
	CacheStats() domain.CacheStats
}

// BatchService converts many inputs concurrently.
type BatchService interface {
	// ConvertAll converts every input and returns results in input order.
	ConvertAll(ctx context.Context, inputs []string, opts domain.ConvertOptions) ([]*domain.ProcessingResult, error)
}
