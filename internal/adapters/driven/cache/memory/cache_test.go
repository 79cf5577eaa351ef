package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

func key(input string) domain.CacheKey {
	return domain.CacheKey{Input: input, Context: domain.DomainGeneral, Level: domain.AudienceBasic}
}

func TestCache_LookupMissThenHit(t *testing.T) {
	c := New(4)

	_, ok := c.Lookup(key("x^2"))
	assert.False(t, ok)

	c.Insert(key("x^2"), domain.CacheEntry{Output: "x squared", Status: domain.StatusConverged})

	got, ok := c.Lookup(key("x^2"))
	require.True(t, ok)
	assert.Equal(t, "x squared", got.Output)
	assert.Equal(t, 1, got.Hits)

	got, _ = c.Lookup(key("x^2"))
	assert.Equal(t, 2, got.Hits)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 4, stats.Capacity)
}

func TestCache_KeyExactness(t *testing.T) {
	c := New(8)
	base := domain.CacheKey{Input: `\alpha`, Context: "calculus", Level: domain.AudienceIntermediate}
	c.Insert(base, domain.CacheEntry{Output: "alpha"})

	tests := []struct {
		name string
		key  domain.CacheKey
	}{
		{"input", domain.CacheKey{Input: `\alpha `, Context: base.Context, Level: base.Level}},
		{"context", domain.CacheKey{Input: base.Input, Context: "probability", Level: base.Level}},
		{"level", domain.CacheKey{Input: base.Input, Context: base.Context, Level: domain.AudienceAdvanced}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := c.Lookup(tt.key)
			assert.False(t, ok)
		})
	}

	_, ok := c.Lookup(base)
	assert.True(t, ok)
}

func TestCache_HalfBatchEviction(t *testing.T) {
	c := New(4)
	for i := 0; i < 4; i++ {
		c.Insert(key(fmt.Sprint(i)), domain.CacheEntry{Output: fmt.Sprint(i)})
	}
	// Touch 0 so 1 and 2 are the least recently used.
	_, _ = c.Lookup(key("0"))

	c.Insert(key("4"), domain.CacheEntry{Output: "4"})

	assert.Equal(t, 3, c.Len())
	for _, gone := range []string{"1", "2"} {
		_, ok := c.Lookup(key(gone))
		assert.False(t, ok, gone)
	}
	for _, kept := range []string{"0", "3", "4"} {
		_, ok := c.Lookup(key(kept))
		assert.True(t, ok, kept)
	}
	assert.Equal(t, int64(2), c.Stats().Evictions)
}

func TestCache_CapacityOneEvictsSingle(t *testing.T) {
	c := New(1)
	c.Insert(key("a"), domain.CacheEntry{})
	c.Insert(key("b"), domain.CacheEntry{})

	assert.Equal(t, 1, c.Len())
	_, ok := c.Lookup(key("b"))
	assert.True(t, ok)
}

func TestCache_ZeroCapacityDisabled(t *testing.T) {
	c := New(0)
	c.Insert(key("a"), domain.CacheEntry{Output: "a"})

	_, ok := c.Lookup(key("a"))
	assert.False(t, ok)
	assert.Zero(t, c.Len())
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestCache_ReplaceKeepsHits(t *testing.T) {
	c := New(2)
	c.Insert(key("a"), domain.CacheEntry{Output: "old"})
	_, _ = c.Lookup(key("a"))

	c.Insert(key("a"), domain.CacheEntry{Output: "new"})
	got, ok := c.Lookup(key("a"))
	require.True(t, ok)
	assert.Equal(t, "new", got.Output)
	assert.Equal(t, 2, got.Hits)
	assert.Equal(t, 1, c.Len())
}

func TestCache_EntriesAreCopies(t *testing.T) {
	c := New(2)
	tokens := []string{`\foo`}
	c.Insert(key("a"), domain.CacheEntry{Unrecognized: tokens})
	tokens[0] = `\bar`

	got, _ := c.Lookup(key("a"))
	assert.Equal(t, []string{`\foo`}, got.Unrecognized)

	got.Unrecognized[0] = `\baz`
	again, _ := c.Lookup(key("a"))
	assert.Equal(t, []string{`\foo`}, again.Unrecognized)
}

func TestCache_RefreshesStoredAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := New(2, WithClock(func() time.Time { return now }))

	c.Insert(key("a"), domain.CacheEntry{})
	now = now.Add(time.Minute)

	got, _ := c.Lookup(key("a"))
	assert.Equal(t, now, got.StoredAt)
}

func TestCache_Clear(t *testing.T) {
	c := New(2)
	c.Insert(key("a"), domain.CacheEntry{})
	_, _ = c.Lookup(key("a"))

	c.Clear()
	assert.Zero(t, c.Len())
	assert.Equal(t, int64(1), c.Stats().Hits)
}

func TestCache_Concurrent(t *testing.T) {
	c := New(16)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			k := key(fmt.Sprint(id % 24))
			if _, ok := c.Lookup(k); !ok {
				c.Insert(k, domain.CacheEntry{Output: fmt.Sprint(id)})
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
	stats := c.Stats()
	assert.Equal(t, int64(64), stats.Hits+stats.Misses)
}
