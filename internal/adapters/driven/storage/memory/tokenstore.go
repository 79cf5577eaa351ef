package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory implementation of driven.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]domain.TokenRecord
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]domain.TokenRecord),
	}
}

// Record increments the count of each token.
func (s *TokenStore) Record(_ context.Context, tokens []string, sample, label string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tok := range tokens {
		rec, ok := s.tokens[tok]
		if !ok {
			rec = domain.TokenRecord{Token: tok, FirstSeen: at}
		}
		rec.Count++
		rec.Sample = sample
		rec.Context = label
		rec.LastSeen = at
		s.tokens[tok] = rec
	}
	return nil
}

// Get retrieves a token record.
func (s *TokenStore) Get(_ context.Context, token string) (*domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// List returns records by descending count.
func (s *TokenStore) List(_ context.Context, limit int) ([]domain.TokenRecord, error) {
	s.mu.RLock()
	out := make([]domain.TokenRecord, 0, len(s.tokens))
	for _, rec := range s.tokens {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Token < out[j].Token
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Clear removes every record.
func (s *TokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]domain.TokenRecord)
	return nil
}

// Close is a no-op for the memory store.
func (s *TokenStore) Close() error {
	return nil
}
