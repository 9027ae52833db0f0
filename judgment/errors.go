package judgment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExtractionFailed is matched by every error returned from Extract.
var ErrExtractionFailed = errors.New("judgment extraction failed")

// Attempt records why one strategy did not produce a qualifying candidate.
type Attempt struct {
	Strategy string
	Reason   error
}

// ExtractionError is returned when no strategy yields a valid judgment.
// Attempts is empty when the input was blank and no strategy ran.
type ExtractionError struct {
	Attempts []Attempt
}

func (e *ExtractionError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrExtractionFailed.Error() + ": empty input"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Strategy, a.Reason))
	}
	return ErrExtractionFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

var errNoCandidate = errors.New("no candidate found")
