// Package tui provides an interactive terminal user interface for speakmath.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Conversion turns notation into spoken text.
	Conversion driving.ConversionService

	// Tokens exposes the unrecognized token log. Optional.
	Tokens driving.TokenService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService

	// ResultAction provides actions on conversion results. Optional.
	ResultAction driving.ResultActionService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	conversion driving.ConversionService,
	tokens driving.TokenService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Conversion: conversion,
		Tokens:     tokens,
		Settings:   settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Conversion == nil {
		return ErrMissingConversionService
	}
	return nil
}
