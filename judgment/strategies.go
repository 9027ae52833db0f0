package judgment

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Strategy is one way of recovering candidate fields from raw judge output.
// Find returns the fields it located or an error describing why it found none.
// Find must be a pure function of its arguments.
type Strategy struct {
	Name string
	Find func(text string, fields []string) (Candidate, error)
}

// Names of the built-in strategies, in the order they are tried.
const (
	StrategyWholeText       = "whole_text"
	StrategyEmbeddedObject  = "embedded_object"
	StrategyLabeledSections = "labeled_sections"
)

// WholeText parses the entire input as a single JSON object with exact key names.
var WholeText = Strategy{
	Name: StrategyWholeText,
	Find: func(text string, fields []string) (Candidate, error) {
		return decodeObject(strings.TrimSpace(text), fields, false)
	},
}

// EmbeddedObject parses the first brace-delimited span that contains no nested
// braces. Later spans are never tried, and values containing braces defeat the
// span detector.
var EmbeddedObject = Strategy{
	Name: StrategyEmbeddedObject,
	Find: findEmbeddedObject,
}

// LabeledSections reads "field: value" sections anchored on the field names in
// declared order.
var LabeledSections = Strategy{
	Name: StrategyLabeledSections,
	Find: findLabeledSections,
}

var flatObjectRegex = regexp.MustCompile(`\{[^{}]*\}`)

func findEmbeddedObject(text string, fields []string) (Candidate, error) {
	span := flatObjectRegex.FindString(text)
	if span == "" {
		return nil, fmt.Errorf("%w: no brace-delimited object", errNoCandidate)
	}

	c, err := decodeObject(span, fields, true)
	var syntaxErr *json.SyntaxError
	if err == nil || !errors.As(err, &syntaxErr) {
		return c, err
	}

	repaired := repairObject(span)
	if repaired == span {
		return nil, err
	}
	return decodeObject(repaired, fields, true)
}

// decodeObject unmarshals a JSON object and picks the requested string fields.
// With foldKeys set, keys are matched case-insensitively when no exact key exists.
func decodeObject(s string, fields []string, foldKeys bool) (Candidate, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: not an object", errNoCandidate)
	}

	var keys []string
	if foldKeys {
		keys = make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	c := make(Candidate, len(fields))
	for _, f := range fields {
		v, ok := obj[f]
		if !ok && foldKeys {
			for _, k := range keys {
				if strings.EqualFold(k, f) {
					v, ok = obj[k], true
					break
				}
			}
		}
		if !ok {
			continue
		}
		str, isString := v.(string)
		if !isString {
			return nil, fmt.Errorf("field %q is %T, not a string", f, v)
		}
		c[f] = str
	}
	return c, nil
}

var (
	trailingCommaRegex = regexp.MustCompile(`,\s*\}`)
	unquotedKeyRegex   = regexp.MustCompile(`(\{|,)\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
)

// repairObject applies one pass of fixes for dictionary-like output that is not
// strict JSON: single-quoted literals, trailing commas and bare keys.
func repairObject(s string) string {
	repaired := s
	if !strings.Contains(repaired, `"`) && strings.Contains(repaired, `'`) {
		repaired = strings.ReplaceAll(repaired, `'`, `"`)
	}
	repaired = trailingCommaRegex.ReplaceAllString(repaired, "}")
	repaired = unquotedKeyRegex.ReplaceAllString(repaired, `$1"$2":`)
	return repaired
}

var (
	leadingMarkerRegex  = regexp.MustCompile(`(?m)^[ \t]*(?:(?:[-•*]+|\d+[.)])[ \t]*)+`)
	trailingMarkerRegex = regexp.MustCompile(`(?m)[ \t]*\*+[ \t]*$`)
)

func findLabeledSections(text string, fields []string) (Candidate, error) {
	type section struct{ anchorStart, valueStart int }

	sections := make([]section, 0, len(fields))
	pos := 0
	for _, f := range fields {
		anchor := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(f) + `[ \t]*:`)
		loc := anchor.FindStringIndex(text[pos:])
		if loc == nil {
			return nil, fmt.Errorf("%w: missing %q anchor", errNoCandidate, f+":")
		}
		sections = append(sections, section{anchorStart: pos + loc[0], valueStart: pos + loc[1]})
		pos += loc[1]
	}

	c := make(Candidate, len(fields))
	for i, f := range fields {
		end := len(text)
		if i+1 < len(sections) {
			end = sections[i+1].anchorStart
		}
		c[f] = cleanSection(text[sections[i].valueStart:end])
	}
	return c, nil
}

// cleanSection strips list markers and emphasis, double quotes and surrounding whitespace.
func cleanSection(s string) string {
	s = leadingMarkerRegex.ReplaceAllString(s, "")
	s = trailingMarkerRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimSpace(s)
}
