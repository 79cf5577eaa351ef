// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// ConversionService runs the notation pipeline (classify, rewrite, guard)
// behind the result cache. BatchService fans conversions out, TokenService
// keeps the unrecognized-token log, and SettingsService maps config keys
// onto domain.Settings.
package services
