package llmjudge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/datar-psa/gojudge/api"
	"github.com/datar-psa/gojudge/judgment"
	"github.com/datar-psa/gojudge/scoring"
)

// DefaultConcurrency bounds the number of judge calls a questionnaire runs at once
const DefaultConcurrency = 4

// QuestionnaireOptions configures the Questionnaire scorer
type QuestionnaireOptions struct {
	// Questions are asked independently about the same student response
	Questions []string
	// Concurrency limits in-flight judge calls. Values below 1 mean DefaultConcurrency
	Concurrency int

	Table              *scoring.ScoreTable
	Extractor          *judgment.Extractor
	ExtractionAttempts int
	Logger             *slog.Logger
}

// QuestionResult is the outcome of a single question
type QuestionResult struct {
	Question string
	Score    api.Score
}

// Summary aggregates a questionnaire run
type Summary struct {
	RunID string
	// Results are in question order
	Results []QuestionResult
	// MeanScore averages scored questions only; it is 0 when nothing was scored
	MeanScore float64
	Passed    int
	Failed    int
	Unscored  int
}

// QuestionnaireScorer runs several assessment questions against one response
type QuestionnaireScorer struct {
	questions   []*assessmentScorer
	concurrency int
	logger      *slog.Logger
}

// Questionnaire returns a scorer that asks every question in opts.Questions
// about the same response and averages the scored results
func Questionnaire(llm api.LLMGenerator, opts QuestionnaireOptions) *QuestionnaireScorer {
	q := &QuestionnaireScorer{
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
	if q.concurrency < 1 {
		q.concurrency = DefaultConcurrency
	}
	if q.logger == nil {
		q.logger = slog.Default()
	}
	for _, question := range opts.Questions {
		q.questions = append(q.questions, newAssessmentScorer(llm, AssessmentOptions{
			Question:           question,
			Table:              opts.Table,
			Extractor:          opts.Extractor,
			ExtractionAttempts: opts.ExtractionAttempts,
			Logger:             q.logger,
		}))
	}
	return q
}

// Run asks every question and returns per-question results with a summary
func (q *QuestionnaireScorer) Run(ctx context.Context, in api.ScoreInputs) Summary {
	runID := uuid.NewString()
	logger := q.logger.With("run_id", runID)

	results := make([]QuestionResult, len(q.questions))

	var g errgroup.Group
	g.SetLimit(q.concurrency)
	for i, s := range q.questions {
		g.Go(func() error {
			results[i] = QuestionResult{
				Question: s.question,
				Score:    s.Score(ctx, in),
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{RunID: runID, Results: results}
	var total float64
	for _, r := range results {
		if r.Score.Error != nil {
			summary.Unscored++
			continue
		}
		total += r.Score.Score
		if r.Score.Metadata["verdict"] == string(judgment.VerdictPass) {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	if scored := summary.Passed + summary.Failed; scored > 0 {
		summary.MeanScore = total / float64(scored)
	}

	logger.InfoContext(ctx, "questionnaire finished",
		"questions", len(results),
		"passed", summary.Passed,
		"failed", summary.Failed,
		"unscored", summary.Unscored,
		"mean_score", summary.MeanScore,
	)
	return summary
}

// Score implements api.Scorer. Error is set only when no question could be scored
func (q *QuestionnaireScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	summary := q.Run(ctx, in)

	result := api.Score{
		Name:  "Questionnaire",
		Score: summary.MeanScore,
		Metadata: map[string]any{
			"run_id":   summary.RunID,
			"passed":   summary.Passed,
			"failed":   summary.Failed,
			"unscored": summary.Unscored,
			"results":  summary.Results,
		},
	}

	if len(summary.Results) == 0 {
		result.Error = api.ErrNoAssessmentQuestion
		return result
	}
	if summary.Unscored == len(summary.Results) {
		errs := make([]error, 0, len(summary.Results))
		for _, r := range summary.Results {
			errs = append(errs, fmt.Errorf("%q: %w", r.Question, r.Score.Error))
		}
		result.Error = errors.Join(errs...)
	}
	return result
}

var _ api.Scorer = (*QuestionnaireScorer)(nil)
