// Package ollama implements LLMGenerator on top of a local or remote Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollamaapi "github.com/ollama/ollama/api"

	"github.com/datar-psa/gojudge/api"
)

// DefaultBaseURL is where a local Ollama server listens
const DefaultBaseURL = "http://localhost:11434"

// Generator calls the native /api/chat endpoint with streaming disabled
type Generator struct {
	client    *ollamaapi.Client
	modelName string
	options   map[string]any
}

type options struct {
	httpClient  *http.Client
	temperature *float64
	maxTokens   int
}

// Option configures a Generator
type Option func(*options)

// WithHTTPClient replaces the HTTP client used for requests
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTemperature sets the sampling temperature sent with every request
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = &t }
}

// WithMaxTokens caps the length of the judge's answer (num_predict)
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

// NewGenerator creates a generator for modelName served at baseURL.
// An OpenAI-compatible "/v1" suffix on baseURL is dropped.
func NewGenerator(baseURL, modelName string, opts ...Option) (*Generator, error) {
	o := &options{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(o)
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/v1")
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url %q: %w", baseURL, err)
	}

	modelOptions := make(map[string]any)
	if o.temperature != nil {
		modelOptions["temperature"] = *o.temperature
	}
	if o.maxTokens > 0 {
		modelOptions["num_predict"] = o.maxTokens
	}

	return &Generator{
		client:    ollamaapi.NewClient(base, o.httpClient),
		modelName: modelName,
		options:   modelOptions,
	}, nil
}

// Generate implements LLMGenerator.Generate
func (g *Generator) Generate(ctx context.Context, prompt api.Prompt) (string, error) {
	messages := make([]ollamaapi.Message, 0, 2)
	if prompt.System != "" {
		messages = append(messages, ollamaapi.Message{Role: "system", Content: prompt.System})
	}
	messages = append(messages, ollamaapi.Message{Role: "user", Content: prompt.User})

	stream := false
	req := &ollamaapi.ChatRequest{
		Model:    g.modelName,
		Messages: messages,
		Stream:   &stream,
		Options:  g.options,
	}

	var sb strings.Builder
	err := g.client.Chat(ctx, req, func(resp ollamaapi.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	return sb.String(), nil
}

// Verify that Generator implements LLMGenerator
var _ api.LLMGenerator = (*Generator)(nil)
