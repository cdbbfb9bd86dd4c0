package score

import (
	"errors"
	"fmt"
	"strings"
)

// IncompleteInputError reports checklist questions that were not answered.
// Recoverable: the caller should re-prompt for the missing answers.
type IncompleteInputError struct {
	Missing []string // Question IDs, sorted
}

func (e *IncompleteInputError) Error() string {
	return fmt.Sprintf("checklist incomplete: missing answers for %s", strings.Join(e.Missing, ", "))
}

// InsufficientDataError reports a tapping run that cannot be analyzed.
// Recoverable: the caller may retry the test or fall back to
// checklist-only scoring.
type InsufficientDataError struct {
	Count  int    // Taps recorded
	Min    int    // Taps required
	Reason string // Non-empty when the run is invalid for a reason other than count
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("tapping run invalid: %s", e.Reason)
	}
	return fmt.Sprintf("tapping run too short: %d taps recorded, %d required", e.Count, e.Min)
}

// ErrNoSubScores is returned when aggregation is attempted with no inputs
var ErrNoSubScores = errors.New("at least one sub-score is required")
