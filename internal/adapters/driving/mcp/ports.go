package mcp

import (
	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Conversion turns notation into spoken text.
	Conversion driving.ConversionService

	// Batch converts many inputs at once. Optional.
	Batch driving.BatchService

	// Tokens exposes the unrecognized token log. Optional.
	Tokens driving.TokenService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Conversion == nil {
		return ErrMissingConversionService
	}
	return nil
}
