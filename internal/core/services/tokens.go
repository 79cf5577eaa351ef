package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driven"
	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
)

// Ensure TokenService implements the interface.
var _ driving.TokenService = (*TokenService)(nil)

// TokenService keeps a log of control words that no rule recognised.
type TokenService struct {
	store driven.TokenStore
	now   func() time.Time
}

// NewTokenService creates a new token service.
func NewTokenService(store driven.TokenStore) *TokenService {
	return &TokenService{
		store: store,
		now:   time.Now,
	}
}

// Record stores the unrecognized tokens of result, with its input as the
// sample and its context label.
func (s *TokenService) Record(ctx context.Context, result *domain.ProcessingResult) error {
	if result == nil || len(result.Unrecognized) == 0 {
		return nil
	}
	if err := s.store.Record(ctx, result.Unrecognized, result.Input, result.Context.Label, s.now()); err != nil {
		return fmt.Errorf("record tokens: %w", err)
	}
	return nil
}

// List returns the most frequent tokens first.
func (s *TokenService) List(ctx context.Context, limit int) ([]domain.TokenRecord, error) {
	return s.store.List(ctx, limit)
}

// Get returns one token record.
func (s *TokenService) Get(ctx context.Context, token string) (*domain.TokenRecord, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, token)
}

// Clear forgets every token.
func (s *TokenService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
