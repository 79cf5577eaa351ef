// Package mcp provides an MCP (Model Context Protocol) server adapter for speakmath.
// It lets AI assistants turn notation into speakable text through the
// convert tools and inspect rules and unrecognized tokens as resources.
package mcp

import "errors"

var (
	// ErrMissingConversionService is returned when the conversion service is not provided.
	ErrMissingConversionService = errors.New("mcp: conversion service is required")

	// ErrBatchUnavailable is returned by convert_batch when no batch service is configured.
	ErrBatchUnavailable = errors.New("mcp: batch conversion is not configured")
)
