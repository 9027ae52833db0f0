package judgment

import (
	"fmt"
	"strings"
)

// Extractor turns raw judge output into a Judgment by trying strategies in a
// fixed order and accepting the first candidate that passes validation.
// An Extractor is immutable and safe for concurrent use.
type Extractor struct {
	fields     []string
	strategies []Strategy
}

// Option configures an Extractor
type Option func(*Extractor)

// WithRequiredFields requires additional fields beyond reasoning, verdict and
// confidence. They are anchored after the core fields, in the order given.
func WithRequiredFields(fields ...string) Option {
	return func(e *Extractor) {
		for _, f := range fields {
			f = strings.ToLower(strings.TrimSpace(f))
			if f == "" || containsField(e.fields, f) {
				continue
			}
			e.fields = append(e.fields, f)
		}
	}
}

// WithStrategies appends strategies that run after the built-in ones.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Extractor) {
		for _, s := range strategies {
			if s.Find != nil {
				e.strategies = append(e.strategies, s)
			}
		}
	}
}

// NewExtractor creates an Extractor using the built-in strategies followed by
// any registered through options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		fields:     append([]string(nil), CoreFields...),
		strategies: []Strategy{WholeText, EmbeddedObject, LabeledSections},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fields returns the required field names in anchor order.
func (e *Extractor) Fields() []string {
	return append([]string(nil), e.fields...)
}

// Extract returns the first valid Judgment any strategy recovers from raw.
// Failure is always an *ExtractionError matching ErrExtractionFailed.
func (e *Extractor) Extract(raw string) (Judgment, error) {
	j, _, err := e.ExtractWithStrategy(raw)
	return j, err
}

// ExtractWithStrategy is Extract that also reports which strategy succeeded.
func (e *Extractor) ExtractWithStrategy(raw string) (Judgment, string, error) {
	if strings.TrimSpace(raw) == "" {
		return Judgment{}, "", &ExtractionError{}
	}

	failure := &ExtractionError{Attempts: make([]Attempt, 0, len(e.strategies))}
	for _, s := range e.strategies {
		candidate, err := runStrategy(s, raw, e.fields)
		if err == nil {
			var j Judgment
			if j, err = candidate.validate(e.fields); err == nil {
				return j, s.Name, nil
			}
		}
		failure.Attempts = append(failure.Attempts, Attempt{Strategy: s.Name, Reason: err})
	}
	return Judgment{}, "", failure
}

// runStrategy contains panics from registered strategies so that a faulty
// parser only disqualifies its own candidate.
func runStrategy(s Strategy, raw string, fields []string) (c Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("strategy panicked: %v", r)
		}
	}()
	return s.Find(raw, fields)
}

var defaultExtractor = NewExtractor()

// Extract uses an Extractor with default fields and strategies.
func Extract(raw string) (Judgment, error) {
	return defaultExtractor.Extract(raw)
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
