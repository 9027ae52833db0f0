package gojudge

import (
	"github.com/datar-psa/gojudge/api"
	"github.com/datar-psa/gojudge/judgment"
	"github.com/datar-psa/gojudge/scoring"
)

type LLMGenerator = api.LLMGenerator
type LLMGeneratorFunc = api.LLMGeneratorFunc
type Prompt = api.Prompt

type Judgment = judgment.Judgment
type Verdict = judgment.Verdict
type Confidence = judgment.Confidence
type Extractor = judgment.Extractor
type ExtractionError = judgment.ExtractionError

type ScoreTable = scoring.ScoreTable

const (
	VerdictPass = judgment.VerdictPass
	VerdictFail = judgment.VerdictFail

	ConfidenceHigh   = judgment.ConfidenceHigh
	ConfidenceMedium = judgment.ConfidenceMedium
	ConfidenceLow    = judgment.ConfidenceLow
)
