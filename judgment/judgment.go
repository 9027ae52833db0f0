// Package judgment recovers structured verdicts from free-form judge model output.
package judgment

import (
	"fmt"
	"strings"
)

// Field names of a judgment, in the order a judge is asked to produce them.
const (
	FieldReasoning  = "reasoning"
	FieldVerdict    = "verdict"
	FieldConfidence = "confidence"
)

// CoreFields are always required for a judgment to exist.
var CoreFields = []string{FieldReasoning, FieldVerdict, FieldConfidence}

// Verdict is the binary outcome of one assessment question
type Verdict string

const (
	VerdictPass Verdict = "Pass"
	VerdictFail Verdict = "Fail"
)

// Confidence is the judge's self-reported certainty in its verdict
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

var verdictsByName = map[string]Verdict{
	"pass": VerdictPass,
	"fail": VerdictFail,
}

var confidencesByName = map[string]Confidence{
	"high":   ConfidenceHigh,
	"medium": ConfidenceMedium,
	"low":    ConfidenceLow,
}

// InvalidValueError reports a verdict or confidence value that matches no canonical member
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Field, e.Value)
}

// ParseVerdict matches s case-insensitively, ignoring surrounding whitespace.
func ParseVerdict(s string) (Verdict, error) {
	if v, ok := verdictsByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	return "", &InvalidValueError{Field: FieldVerdict, Value: s}
}

// ParseConfidence matches s case-insensitively, ignoring surrounding whitespace.
func ParseConfidence(s string) (Confidence, error) {
	if c, ok := confidencesByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", &InvalidValueError{Field: FieldConfidence, Value: s}
}

// Valid reports whether v is a canonical verdict.
func (v Verdict) Valid() bool {
	return v == VerdictPass || v == VerdictFail
}

// Valid reports whether c is a canonical confidence level.
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Judgment is the validated result of evaluating one response against one
// assessment question. A Judgment returned without error always has a
// non-empty Reasoning and canonical Verdict and Confidence.
type Judgment struct {
	Reasoning  string     `json:"reasoning"`
	Verdict    Verdict    `json:"verdict"`
	Confidence Confidence `json:"confidence"`
	// Extra holds additional required fields requested through WithRequiredFields.
	Extra map[string]string `json:"extra,omitempty"`
}

// Candidate is an unvalidated field set produced by one extraction strategy.
// Keys are the required field names.
type Candidate map[string]string

// validate turns a candidate into a Judgment or reports why it does not qualify.
func (c Candidate) validate(fields []string) (Judgment, error) {
	for _, f := range fields {
		if strings.TrimSpace(c[f]) == "" {
			return Judgment{}, fmt.Errorf("missing required field %q", f)
		}
	}

	verdict, err := ParseVerdict(c[FieldVerdict])
	if err != nil {
		return Judgment{}, err
	}
	confidence, err := ParseConfidence(c[FieldConfidence])
	if err != nil {
		return Judgment{}, err
	}

	j := Judgment{
		Reasoning:  strings.TrimSpace(c[FieldReasoning]),
		Verdict:    verdict,
		Confidence: confidence,
	}
	for _, f := range fields {
		if isCoreField(f) {
			continue
		}
		if j.Extra == nil {
			j.Extra = make(map[string]string)
		}
		j.Extra[f] = strings.TrimSpace(c[f])
	}
	return j, nil
}

func isCoreField(name string) bool {
	return name == FieldReasoning || name == FieldVerdict || name == FieldConfidence
}
