package llmjudge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datar-psa/gojudge/api"
	"github.com/datar-psa/gojudge/judgment"
	"github.com/datar-psa/gojudge/scoring"
)

// DefaultExtractionAttempts is how many times the judge is asked before
// an unparseable answer is reported as unscored
const DefaultExtractionAttempts = 1

// AssessmentOptions configures the Assessment scorer
type AssessmentOptions struct {
	// Question is the assessment question put to the judge (required)
	Question string
	// Table maps the judge's verdict and confidence to a score.
	// Defaults to scoring.DefaultScoreTable()
	Table *scoring.ScoreTable
	// Extractor parses the judge's answer. Defaults to judgment.NewExtractor()
	Extractor *judgment.Extractor
	// ExtractionAttempts is the number of judge calls made while the answer cannot be parsed.
	// Values below 1 mean DefaultExtractionAttempts
	ExtractionAttempts int
	// Logger receives extraction failures. Defaults to slog.Default()
	Logger *slog.Logger
}

// Assessment returns a scorer that asks the judge model one Pass/Fail question
// about the student response and maps the extracted verdict and confidence
// onto the score table.
//
// A judge answer that cannot be parsed yields a Score with a non-nil Error
// matching judgment.ErrExtractionFailed and Metadata["scored"] == false.
func Assessment(llm api.LLMGenerator, opts AssessmentOptions) api.Scorer {
	return newAssessmentScorer(llm, opts)
}

type assessmentScorer struct {
	llm       api.LLMGenerator
	question  string
	table     scoring.ScoreTable
	extractor *judgment.Extractor
	attempts  int
	logger    *slog.Logger
}

func newAssessmentScorer(llm api.LLMGenerator, opts AssessmentOptions) *assessmentScorer {
	s := &assessmentScorer{
		llm:       llm,
		question:  strings.TrimSpace(opts.Question),
		table:     scoring.DefaultScoreTable(),
		extractor: opts.Extractor,
		attempts:  opts.ExtractionAttempts,
		logger:    opts.Logger,
	}
	if opts.Table != nil {
		s.table = *opts.Table
	}
	if s.extractor == nil {
		s.extractor = judgment.NewExtractor()
	}
	if s.attempts < 1 {
		s.attempts = DefaultExtractionAttempts
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *assessmentScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	result := api.Score{
		Name: "Assessment",
		Metadata: map[string]any{
			"question": s.question,
			"scored":   false,
		},
	}

	if s.llm == nil {
		return returnError(result, fmt.Errorf("LLM generator is required"))
	}
	if s.question == "" {
		return returnError(result, api.ErrNoAssessmentQuestion)
	}
	if strings.TrimSpace(in.Output) == "" {
		return returnError(result, api.ErrNoStudentResponse)
	}

	prompt := BuildPrompt(s.question, in, s.extractor.Fields()...)

	var (
		raw     string
		lastErr error
	)
	for attempt := 1; attempt <= s.attempts; attempt++ {
		var err error
		raw, err = s.llm.Generate(ctx, prompt)
		if err != nil {
			return returnError(result, fmt.Errorf("%w: %w", api.ErrLLMGenerationFailed, err))
		}

		j, strategy, err := s.extractor.ExtractWithStrategy(raw)
		if err != nil {
			lastErr = err
			s.logger.WarnContext(ctx, "could not extract judgment",
				"question", s.question,
				"attempt", attempt,
				"max_attempts", s.attempts,
				"error", err,
			)
			continue
		}

		result.Score = scoring.Score(j, s.table)
		result.Metadata["reasoning"] = j.Reasoning
		result.Metadata["verdict"] = string(j.Verdict)
		result.Metadata["confidence"] = string(j.Confidence)
		result.Metadata["strategy"] = strategy
		result.Metadata["attempts"] = attempt
		result.Metadata["raw_response"] = raw
		result.Metadata["scored"] = true
		if len(j.Extra) > 0 {
			result.Metadata["extra"] = j.Extra
		}
		return result
	}

	result.Metadata["attempts"] = s.attempts
	result.Metadata["raw_response"] = raw
	return returnError(result, lastErr)
}

func returnError(result api.Score, err error) api.Score {
	result.Score = 0
	result.Error = err
	result.Metadata["scored"] = false
	return result
}
