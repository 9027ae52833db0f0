package gojudge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datar-psa/gojudge/config"
	"github.com/datar-psa/gojudge/openai"
	"github.com/datar-psa/gojudge/scoring"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func staticLLM(answer string) LLMGeneratorFunc {
	return func(ctx context.Context, prompt Prompt) (string, error) {
		return answer, nil
	}
}

func TestExtractAndScore(t *testing.T) {
	j, err := Extract("Reasoning: The response is off topic.\nVerdict: FAIL\nConfidence: medium")
	require.NoError(t, err)
	assert.Equal(t, VerdictFail, j.Verdict)
	assert.Equal(t, ConfidenceMedium, j.Confidence)
	assert.Equal(t, scoring.DefaultFailMedium, ScoreJudgment(j, DefaultScoreTable()))

	_, err = Extract("")
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestLLMJudge_Assessment(t *testing.T) {
	table, err := scoring.NewScoreTable(scoring.WithPassLow(0.7))
	require.NoError(t, err)

	judge := NewLLMJudge(
		WithLLMGenerator(staticLLM(`{"reasoning": "r", "verdict": "Pass", "confidence": "Low"}`)),
		WithScoreTable(table),
		WithLogger(discardLogger),
	)

	result := judge.Assessment(AssessmentOptions{Question: "Is it polite?"}).
		Score(context.Background(), ScoreInputs{Input: "Greet the user.", Output: "Hello there!"})

	require.NoError(t, result.Error)
	assert.Equal(t, 0.7, result.Score)
}

func TestLLMJudge_WithoutGenerator(t *testing.T) {
	result := NewGeminiLLMJudge().Assessment(AssessmentOptions{Question: "q"}).
		Score(context.Background(), ScoreInputs{Output: "r"})
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "LLM generator is required")
}

func TestLLMJudge_Questionnaire(t *testing.T) {
	judge := NewLLMJudge(
		WithLLMGenerator(staticLLM(`{"reasoning": "r", "verdict": "Fail", "confidence": "High"}`)),
		WithConcurrency(2),
		WithLogger(discardLogger),
	)

	summary := judge.Questionnaire(QuestionnaireOptions{Questions: []string{"a?", "b?", "c?"}}).
		Run(context.Background(), ScoreInputs{Output: "r"})

	assert.Equal(t, 3, summary.Failed)
	assert.Zero(t, summary.MeanScore)
	assert.NotEmpty(t, summary.RunID)
}

func TestNewLLMJudgeFromConfig_Ollama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral-nemo", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model": "mistral-nemo", "message": {"role": "assistant", ` +
			`"content": "Reasoning: clear\nVerdict: Pass\nConfidence: Medium"}, "done": true}` + "\n"))
	}))
	defer srv.Close()

	cfg := &config.Config{
		Judge: config.LLMConfig{
			Name:     "mistral-nemo",
			BaseURL:  srv.URL + "/v1",
			Platform: config.PlatformOllama,
			APIKey:   "-",
			Timeout:  5,
			Retries:  1,
		},
		Concurrency:        1,
		ExtractionAttempts: 1,
	}

	judge, err := NewLLMJudgeFromConfig(context.Background(), cfg, discardLogger)
	require.NoError(t, err)

	result := judge.Assessment(AssessmentOptions{Question: "Is the answer clear?"}).
		Score(context.Background(), ScoreInputs{Output: "Yes."})
	require.NoError(t, result.Error)
	assert.Equal(t, scoring.DefaultPassMedium, result.Score)
	assert.Equal(t, "labeled_sections", result.Metadata["strategy"])
}

func TestNewLLMJudgeFromConfig_OpenAI(t *testing.T) {
	t.Setenv("GOJUDGE_TEST_OPENAI_KEY", "sk-env")

	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "1", "object": "chat.completion", "created": 1, "model": "m", "choices": [` +
			`{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", ` +
			`"content": "{\"reasoning\": \"r\", \"verdict\": \"Fail\", \"confidence\": \"Low\"}"}}]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		Judge: config.LLMConfig{
			Name:      "gpt-4o-mini",
			BaseURL:   srv.URL,
			Platform:  config.PlatformOpenAI,
			APIKey:    "${GOJUDGE_TEST_OPENAI_KEY}",
			MaxTokens: 200,
			Timeout:   5,
			Retries:   1,
		},
	}

	judge, err := NewLLMJudgeFromConfig(context.Background(), cfg, discardLogger)
	require.NoError(t, err)

	result := judge.Assessment(AssessmentOptions{Question: "q"}).Score(context.Background(), ScoreInputs{Output: "r"})
	require.NoError(t, result.Error)
	assert.Equal(t, scoring.DefaultFailLow, result.Score)
	assert.Equal(t, "Bearer sk-env", auth)
}

func TestNewLLMJudgeFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{
			name:    "unset api key variable",
			cfg:     config.Config{Judge: config.LLMConfig{Name: "m", Platform: config.PlatformOpenAI, APIKey: "${GOJUDGE_TEST_UNSET_KEY}"}},
			wantErr: "GOJUDGE_TEST_UNSET_KEY",
		},
		{
			name:    "unsupported platform",
			cfg:     config.Config{Judge: config.LLMConfig{Name: "m", Platform: "bedrock"}},
			wantErr: "unsupported platform",
		},
		{
			name: "invalid score table",
			cfg: config.Config{
				Judge:   config.LLMConfig{Name: "m", Platform: config.PlatformOllama, BaseURL: "http://localhost:11434"},
				Scoring: config.ScoreTableConfig{FailHigh: ptr(-0.1)},
			},
			wantErr: "fail_high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMJudgeFromConfig(context.Background(), &tt.cfg, discardLogger)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestPlatformConstructors(t *testing.T) {
	_, err := NewOllamaLLMJudge("http://[::1", "m")
	assert.Error(t, err)

	judge, err := NewOllamaLLMJudge("", "mistral-nemo")
	require.NoError(t, err)
	assert.NotNil(t, judge.llm)

	judge = NewOpenAILLMJudge("gpt-4o-mini", openai.WithAPIKey("sk-test"))
	assert.NotNil(t, judge.llm)

	assert.Nil(t, NewGeminiLLMJudge(WithModelName("gemini-2.5-flash")).llm)
}
