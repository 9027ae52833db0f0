package llmjudge

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datar-psa/gojudge/api"
	"github.com/datar-psa/gojudge/judgment"
)

// answerByQuestion picks a canned answer by looking for a marker in the prompt
func answerByQuestion(answers map[string]string) api.LLMGeneratorFunc {
	return func(ctx context.Context, prompt api.Prompt) (string, error) {
		for marker, answer := range answers {
			if strings.Contains(prompt.User, marker) {
				return answer, nil
			}
		}
		return "", errors.New("unexpected prompt")
	}
}

func TestQuestionnaire_Run(t *testing.T) {
	llm := answerByQuestion(map[string]string{
		"Q1": `{"reasoning": "a", "verdict": "Pass", "confidence": "High"}`,
		"Q2": `{"reasoning": "b", "verdict": "Fail", "confidence": "High"}`,
		"Q3": "no idea",
		"Q4": "Reasoning: c\nVerdict: Pass\nConfidence: Medium",
	})

	q := Questionnaire(llm, QuestionnaireOptions{
		Questions:   []string{"Q1?", "Q2?", "Q3?", "Q4?"},
		Concurrency: 2,
		Logger:      discardLogger,
	})

	summary := q.Run(context.Background(), api.ScoreInputs{Input: "i", Output: "r"})

	_, err := uuid.Parse(summary.RunID)
	require.NoError(t, err)

	require.Len(t, summary.Results, 4)
	for i, want := range []string{"Q1?", "Q2?", "Q3?", "Q4?"} {
		assert.Equal(t, want, summary.Results[i].Question)
	}
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Unscored)
	assert.InDelta(t, (1.0+0.0+0.85)/3, summary.MeanScore, 1e-9)
	assert.ErrorIs(t, summary.Results[2].Score.Error, judgment.ErrExtractionFailed)
}

func TestQuestionnaire_ConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	llm := api.LLMGeneratorFunc(func(ctx context.Context, prompt api.Prompt) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		return `{"reasoning": "r", "verdict": "Pass", "confidence": "High"}`, nil
	})

	questions := make([]string, 6)
	for i := range questions {
		questions[i] = "question"
	}
	q := Questionnaire(llm, QuestionnaireOptions{Questions: questions, Concurrency: 2, Logger: discardLogger})

	done := make(chan Summary)
	go func() { done <- q.Run(context.Background(), api.ScoreInputs{Output: "r"}) }()
	close(release)
	summary := <-done

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 6, summary.Passed)
}

func TestQuestionnaire_Score(t *testing.T) {
	ctx := context.Background()

	t.Run("mean of scored questions", func(t *testing.T) {
		llm := answerByQuestion(map[string]string{
			"Q1": `{"reasoning": "a", "verdict": "Pass", "confidence": "Low"}`,
			"Q2": "garbage",
		})
		result := Questionnaire(llm, QuestionnaireOptions{Questions: []string{"Q1?", "Q2?"}, Logger: discardLogger}).
			Score(ctx, api.ScoreInputs{Output: "r"})

		require.NoError(t, result.Error)
		assert.Equal(t, "Questionnaire", result.Name)
		assert.InDelta(t, 0.6, result.Score, 1e-9)
		assert.Equal(t, 1, result.Metadata["unscored"])
	})

	t.Run("nothing scored", func(t *testing.T) {
		llm := answerByQuestion(map[string]string{"Q": "garbage"})
		result := Questionnaire(llm, QuestionnaireOptions{Questions: []string{"Q1?", "Q2?"}, Logger: discardLogger}).
			Score(ctx, api.ScoreInputs{Output: "r"})

		require.Error(t, result.Error)
		assert.ErrorIs(t, result.Error, judgment.ErrExtractionFailed)
		assert.Zero(t, result.Score)
	})

	t.Run("no questions", func(t *testing.T) {
		result := Questionnaire(&mockLLMGenerator{}, QuestionnaireOptions{}).Score(ctx, api.ScoreInputs{Output: "r"})
		assert.ErrorIs(t, result.Error, api.ErrNoAssessmentQuestion)
	})
}
