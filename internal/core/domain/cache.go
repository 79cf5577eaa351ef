package domain

import "time"

// CacheKey identifies a memoised conversion. All three components must match.
type CacheKey struct {
	// Input is the normalised input text.
	Input string

	// Context is the classification label used.
	Context string

	// Level is the audience level requested.
	Level AudienceLevel
}

// CacheEntry is the value stored for a CacheKey.
type CacheEntry struct {
	Output       string
	Status       Status
	Unrecognized []string
	Passes       int
	Grids        int
	Confidence   float64
	Errors       []string

	// StoredAt is refreshed on every hit for LRU ordering.
	StoredAt time.Time

	// Hits counts lookups served by this entry.
	Hits int
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Size      int
	Capacity  int
	Hits      int64
	Misses    int64
	Evictions int64
}
