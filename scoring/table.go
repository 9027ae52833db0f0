// Package scoring maps validated judgments to scores through a verdict x
// confidence weight table.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/datar-psa/gojudge/judgment"
)

// Default weights. The Fail column rises as confidence drops: a judge that is
// unsure about a failure leaves more room for the response to be acceptable.
const (
	DefaultPassHigh   = 1.0
	DefaultPassMedium = 0.85
	DefaultPassLow    = 0.6
	DefaultFailHigh   = 0.0
	DefaultFailMedium = 0.15
	DefaultFailLow    = 0.4
)

// ErrWeightOutOfRange is returned when a table weight falls outside [0, 1]
var ErrWeightOutOfRange = errors.New("score weight must be within [0, 1]")

const (
	passRow = iota
	failRow
)

const (
	highCol = iota
	mediumCol
	lowCol
)

// ScoreTable holds one weight per (verdict, confidence) pair. It is immutable
// once constructed and is passed by value.
type ScoreTable struct {
	weights [2][3]float64
}

// TableOption overrides one weight of a ScoreTable under construction
type TableOption func(*ScoreTable)

func withWeight(row, col int, w float64) TableOption {
	return func(t *ScoreTable) { t.weights[row][col] = w }
}

// WithPassHigh sets the score for a Pass verdict given with High confidence.
func WithPassHigh(w float64) TableOption { return withWeight(passRow, highCol, w) }

// WithPassMedium sets the score for a Pass verdict given with Medium confidence.
func WithPassMedium(w float64) TableOption { return withWeight(passRow, mediumCol, w) }

// WithPassLow sets the score for a Pass verdict given with Low confidence.
func WithPassLow(w float64) TableOption { return withWeight(passRow, lowCol, w) }

// WithFailHigh sets the score for a Fail verdict given with High confidence.
func WithFailHigh(w float64) TableOption { return withWeight(failRow, highCol, w) }

// WithFailMedium sets the score for a Fail verdict given with Medium confidence.
func WithFailMedium(w float64) TableOption { return withWeight(failRow, mediumCol, w) }

// WithFailLow sets the score for a Fail verdict given with Low confidence.
func WithFailLow(w float64) TableOption { return withWeight(failRow, lowCol, w) }

// DefaultScoreTable returns the table with the default weights.
func DefaultScoreTable() ScoreTable {
	return ScoreTable{weights: [2][3]float64{
		{DefaultPassHigh, DefaultPassMedium, DefaultPassLow},
		{DefaultFailHigh, DefaultFailMedium, DefaultFailLow},
	}}
}

// NewScoreTable starts from the default weights and applies the overrides.
// Every resulting weight must lie in [0, 1]; no ordering between cells is enforced.
func NewScoreTable(opts ...TableOption) (ScoreTable, error) {
	t := DefaultScoreTable()
	for _, opt := range opts {
		opt(&t)
	}

	for _, cell := range t.cells() {
		if math.IsNaN(cell.weight) || cell.weight < 0 || cell.weight > 1 {
			return ScoreTable{}, fmt.Errorf("%w: %s = %v", ErrWeightOutOfRange, cell.name, cell.weight)
		}
	}
	return t, nil
}

// Weight returns the weight stored for the pair. It panics if either value is
// not canonical.
func (t ScoreTable) Weight(v judgment.Verdict, c judgment.Confidence) float64 {
	return t.weights[row(v)][col(c)]
}

// Map returns the weights keyed by their configuration names, e.g. "pass_high".
func (t ScoreTable) Map() map[string]float64 {
	cells := t.cells()
	m := make(map[string]float64, len(cells))
	for _, cell := range cells {
		m[cell.name] = cell.weight
	}
	return m
}

type namedWeight struct {
	name   string
	weight float64
}

func (t ScoreTable) cells() []namedWeight {
	return []namedWeight{
		{"pass_high", t.weights[passRow][highCol]},
		{"pass_medium", t.weights[passRow][mediumCol]},
		{"pass_low", t.weights[passRow][lowCol]},
		{"fail_high", t.weights[failRow][highCol]},
		{"fail_medium", t.weights[failRow][mediumCol]},
		{"fail_low", t.weights[failRow][lowCol]},
	}
}

func row(v judgment.Verdict) int {
	switch v {
	case judgment.VerdictPass:
		return passRow
	case judgment.VerdictFail:
		return failRow
	}
	panic(fmt.Sprintf("scoring: precondition violated: non-canonical verdict %q", string(v)))
}

func col(c judgment.Confidence) int {
	switch c {
	case judgment.ConfidenceHigh:
		return highCol
	case judgment.ConfidenceMedium:
		return mediumCol
	case judgment.ConfidenceLow:
		return lowCol
	}
	panic(fmt.Sprintf("scoring: precondition violated: non-canonical confidence %q", string(c)))
}
