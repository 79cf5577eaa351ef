package domain

import "time"

// Status is the terminal state of one conversion.
type Status string

// Conversion statuses.
const (
	// StatusConverged means a rewrite pass produced no further change.
	StatusConverged Status = "converged"

	// StatusIterationCapped means the pass limit was reached first.
	StatusIterationCapped Status = "iteration_capped"

	// StatusTimedOut means the time budget expired; output may be partial.
	StatusTimedOut Status = "timed_out"

	// StatusStructureError means at least one environment was malformed
	// and left verbatim.
	StatusStructureError Status = "structure_error"
)

// IsValid returns true if the status is recognised.
func (s Status) IsValid() bool {
	switch s {
	case StatusConverged, StatusIterationCapped, StatusTimedOut, StatusStructureError:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// severity orders statuses for Worst.
func (s Status) severity() int {
	switch s {
	case StatusTimedOut:
		return 3
	case StatusStructureError:
		return 2
	case StatusIterationCapped:
		return 1
	default:
		return 0
	}
}

// Worst returns the more severe of two statuses.
// Precedence: timed out, structure error, iteration capped, converged.
func (s Status) Worst(o Status) Status {
	if o.severity() > s.severity() {
		return o
	}
	return s
}

// Classification is the context chosen for one conversion.
type Classification struct {
	// Label is the domain name, or DomainGeneral.
	Label string

	// Confidence is in [0,1].
	Confidence float64

	// Hinted is true when the caller supplied the domain.
	Hinted bool
}

// DomainGeneral is the label used when no domain is confident enough.
const DomainGeneral = "general"

// ConvertOptions controls one conversion.
type ConvertOptions struct {
	// Level selects the phrasing register.
	Level AudienceLevel

	// DomainHint overrides the context classifier when non-empty.
	DomainHint string
}

// ProcessingResult is the sole object returned across the core boundary.
type ProcessingResult struct {
	// ID uniquely identifies this conversion.
	ID string `json:"id"`

	// Input is the text that was converted.
	Input string `json:"input"`

	// Output is the spoken-language text.
	Output string `json:"output"`

	// Elapsed is the wall time spent converting.
	Elapsed time.Duration `json:"elapsed"`

	// Status is the terminal state.
	Status Status `json:"status"`

	// Unrecognized holds notation tokens that matched no rule, sorted.
	Unrecognized []string `json:"unrecognized,omitempty"`

	// Passes is the number of rewrite passes run.
	Passes int `json:"passes"`

	// Grids is the number of structural environments resolved.
	Grids int `json:"grids"`

	// Context is the classification used.
	Context Classification `json:"context"`

	// Level is the audience level used.
	Level AudienceLevel `json:"level"`

	// CacheHit is true when the output came from the cache.
	CacheHit bool `json:"cache_hit"`

	// Errors describes recoverable problems (structure errors, panics in rules).
	Errors []string `json:"errors,omitempty"`
}

// ElapsedSeconds returns Elapsed as fractional seconds.
func (r *ProcessingResult) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}
