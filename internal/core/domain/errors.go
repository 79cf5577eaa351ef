package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown rule or environment kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// Structure Errors.

	// ErrUnterminated indicates an opening delimiter has no matching closer.
	ErrUnterminated = errors.New("unterminated span")

	// ErrMaxDepth indicates nesting exceeded the configured maximum depth.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")

	// ErrRaggedGrid indicates grid rows have differing cell counts.
	ErrRaggedGrid = errors.New("rows have unequal cell counts")

	// ErrNotOpener indicates the matcher was pointed at something that is not a delimiter.
	ErrNotOpener = errors.New("not an opening delimiter")

	// ErrConfiguration indicates invalid initialisation parameters.
	ErrConfiguration = errors.New("invalid configuration")
)

// StructureError reports a malformed or unbalanced structural construct.
// It is recoverable: the offending span is left verbatim in the output.
type StructureError struct {
	// Offset is the byte offset of the opener that failed.
	Offset int

	// Construct names the delimiter or environment involved.
	Construct string

	// Err is the underlying cause (ErrUnterminated, ErrMaxDepth, ErrRaggedGrid).
	Err error
}

// Error implements the error interface.
func (e *StructureError) Error() string {
	return fmt.Sprintf("structure error at offset %d (%s): %v", e.Offset, e.Construct, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StructureError) Unwrap() error {
	return e.Err
}

// NewStructureError creates a StructureError for the given construct.
func NewStructureError(offset int, construct string, err error) *StructureError {
	return &StructureError{Offset: offset, Construct: construct, Err: err}
}

// ConfigurationError reports an invalid setting. It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrConfiguration).
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
