package driven

import "github.com/custodia-labs/speakmath/internal/core/domain"

// ResultCache stores finished conversions keyed by normalised input,
// context label and audience level. A miss is always safe; an entry is only
// returned for an exactly equal key.
type ResultCache interface {
	// Lookup returns a copy of the entry for key and refreshes its recency.
	Lookup(key domain.CacheKey) (domain.CacheEntry, bool)

	// Insert stores entry under key, evicting older entries when full.
	Insert(key domain.CacheKey, entry domain.CacheEntry)

	// Len returns the number of entries.
	Len() int

	// Stats returns hit, miss and eviction counters.
	Stats() domain.CacheStats

	// Clear removes every entry. Counters are kept.
	Clear()
}
