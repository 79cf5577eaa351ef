package convert

import "errors"

// ErrNoConversionService is returned when the conversion service is not configured.
var ErrNoConversionService = errors.New("conversion service not configured")
