package gojudge

import (
	"github.com/datar-psa/gojudge/api"
	"github.com/datar-psa/gojudge/judgment"
	"github.com/datar-psa/gojudge/scoring"
)

type Score = api.Score
type ScoreInputs = api.ScoreInputs
type Scorer = api.Scorer

// Extract parses a raw judge answer with the default strategy chain
func Extract(raw string) (Judgment, error) {
	return judgment.Extract(raw)
}

// ScoreJudgment maps a judgment onto table. j must come from Extract or
// carry canonical verdict and confidence values.
func ScoreJudgment(j Judgment, table ScoreTable) float64 {
	return scoring.Score(j, table)
}

// DefaultScoreTable returns the built-in verdict/confidence weights
func DefaultScoreTable() ScoreTable {
	return scoring.DefaultScoreTable()
}
