package api

import "errors"

var (
	// ErrLLMGenerationFailed is returned when LLM generation fails
	ErrLLMGenerationFailed = errors.New("LLM generation failed")
	// ErrNoAssessmentQuestion is returned when a judge scorer has no question to ask
	ErrNoAssessmentQuestion = errors.New("assessment question is required")
	// ErrNoStudentResponse is returned when there is no output to judge
	ErrNoStudentResponse = errors.New("student response is required")
)
