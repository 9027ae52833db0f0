package scoring

import "github.com/datar-psa/gojudge/judgment"

// Score returns the table weight for the judgment's verdict and confidence.
// The weight is the score; no further arithmetic is applied.
//
// Precondition: j carries canonical Verdict and Confidence values, as every
// Judgment returned by judgment.Extract does. Score panics otherwise.
func Score(j judgment.Judgment, t ScoreTable) float64 {
	return t.Weight(j.Verdict, j.Confidence)
}
