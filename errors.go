package gojudge

import (
	"github.com/datar-psa/gojudge/api"
	"github.com/datar-psa/gojudge/judgment"
	"github.com/datar-psa/gojudge/scoring"
)

var (
	// ErrLLMGenerationFailed is returned when LLM generation fails
	ErrLLMGenerationFailed = api.ErrLLMGenerationFailed
	// ErrNoAssessmentQuestion is returned when a judge scorer has no question to ask
	ErrNoAssessmentQuestion = api.ErrNoAssessmentQuestion
	// ErrNoStudentResponse is returned when there is no output to judge
	ErrNoStudentResponse = api.ErrNoStudentResponse
	// ErrExtractionFailed is matched by every error returned when no strategy yields a valid judgment
	ErrExtractionFailed = judgment.ErrExtractionFailed
	// ErrWeightOutOfRange is returned when a score table weight falls outside [0, 1]
	ErrWeightOutOfRange = scoring.ErrWeightOutOfRange
)
