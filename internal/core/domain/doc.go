// Package domain defines the core business entities for speakmath.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Span: A delimited region of notation text
//   - Grid: The row/column decomposition of an environment span
//   - ProcessingResult: The outcome of one conversion
//   - CacheKey / CacheEntry: Memoised conversion results
//   - Settings: Engine, cache and timeout configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
