package driving

import (
	"context"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// TokenService tracks control words no rule recognised.
type TokenService interface {
	// Record stores the unrecognized tokens of a result. Results without
	// unrecognized tokens are ignored.
	Record(ctx context.Context, result *domain.ProcessingResult) error

	// List returns the most frequent tokens first.
	List(ctx context.Context, limit int) ([]domain.TokenRecord, error)

	// Get returns one token or domain.ErrNotFound.
	Get(ctx context.Context, token string) (*domain.TokenRecord, error)

	// Clear forgets every token.
	Clear(ctx context.Context) error
}
