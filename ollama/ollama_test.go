package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datar-psa/gojudge/api"
)

type chatRequest struct {
	Model    string `json:"model"`
	Stream   *bool  `json:"stream"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Options map[string]any `json:"options"`
}

func TestGenerator_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model": "mistral-nemo", "created_at": "2025-01-01T00:00:00Z", ` +
			`"message": {"role": "assistant", "content": "{\"reasoning\": \"r\", \"verdict\": \"Fail\", \"confidence\": \"Low\"}"}, ` +
			`"done": true}` + "\n"))
	}))
	defer srv.Close()

	gen, err := NewGenerator(srv.URL+"/v1/", "mistral-nemo", WithTemperature(0), WithMaxTokens(500))
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), api.Prompt{System: "sys", User: "user"})
	require.NoError(t, err)
	assert.Equal(t, `{"reasoning": "r", "verdict": "Fail", "confidence": "Low"}`, text)

	assert.Equal(t, "mistral-nemo", got.Model)
	require.NotNil(t, got.Stream)
	assert.False(t, *got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.EqualValues(t, 0, got.Options["temperature"])
	assert.EqualValues(t, 500, got.Options["num_predict"])
}

func TestGenerator_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model \"missing\" not found"}`))
	}))
	defer srv.Close()

	gen, err := NewGenerator(srv.URL, "missing")
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), api.Prompt{User: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama chat failed")
	assert.Contains(t, err.Error(), "not found")
}

func TestNewGenerator_InvalidURL(t *testing.T) {
	_, err := NewGenerator("http://[::1", "m")
	assert.Error(t, err)
}
