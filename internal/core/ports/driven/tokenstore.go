package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// TokenStore persists unrecognized control words so rule authors can see
// what notation is missing.
type TokenStore interface {
	// Record increments the count of each token, remembering sample as the
	// latest input it appeared in.
	Record(ctx context.Context, tokens []string, sample, context string, at time.Time) error

	// Get returns one token record or domain.ErrNotFound.
	Get(ctx context.Context, token string) (*domain.TokenRecord, error)

	// List returns records ordered by count descending, then token.
	// A limit of zero or less returns all records.
	List(ctx context.Context, limit int) ([]domain.TokenRecord, error)

	// Clear deletes every record.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
