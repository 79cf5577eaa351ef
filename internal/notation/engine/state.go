package engine

import "github.com/custodia-labs/speakmath/internal/core/domain"

// State is a rewrite state. Converged, IterationCapped and TimedOut are
// terminal.
type State int

const (
	// Scanning applies rules pass by pass.
	Scanning State = iota

	// StructureMatched is entered while a grid is being extracted.
	StructureMatched

	// Converged means a pass produced no change.
	Converged

	// IterationCapped means the pass limit was reached while text still changed.
	IterationCapped

	// TimedOut means the context was cancelled before convergence.
	TimedOut
)

// String returns the string representation.
func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case StructureMatched:
		return "structure_matched"
	case Converged:
		return "converged"
	case IterationCapped:
		return "iteration_capped"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Converged || s == IterationCapped || s == TimedOut
}

// Status maps a terminal state to the reported status.
func (s State) Status() domain.Status {
	switch s {
	case IterationCapped:
		return domain.StatusIterationCapped
	case TimedOut:
		return domain.StatusTimedOut
	default:
		return domain.StatusConverged
	}
}
