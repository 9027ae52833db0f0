// Package openai implements LLMGenerator for OpenAI and OpenAI-compatible
// chat completion endpoints.
package openai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/datar-psa/gojudge/api"
)

// Generator calls the chat completions endpoint
type Generator struct {
	client      openai.Client
	modelName   string
	temperature *float64
	maxTokens   int
}

type options struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	temperature *float64
	maxTokens   int
}

// Option configures a Generator
type Option func(*options)

// WithBaseURL points the client at an OpenAI-compatible server
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithAPIKey sets the bearer token
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithHTTPClient replaces the HTTP client used for requests
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTemperature sets the sampling temperature sent with every request
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = &t }
}

// WithMaxTokens caps the length of the judge's answer
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

// NewGenerator creates a generator for modelName.
// The SDK's own retries are disabled; wrap the generator in an invoker instead.
func NewGenerator(modelName string, opts ...Option) *Generator {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if o.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(o.httpClient))
	}

	return &Generator{
		client:      openai.NewClient(clientOpts...),
		modelName:   modelName,
		temperature: o.temperature,
		maxTokens:   o.maxTokens,
	}
}

// Generate implements LLMGenerator.Generate
func (g *Generator) Generate(ctx context.Context, prompt api.Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(g.modelName),
		Messages: messages,
	}
	if g.temperature != nil {
		params.Temperature = openai.Float(*g.temperature)
	}
	if g.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(g.maxTokens))
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return completion.Choices[0].Message.Content, nil
}

// Verify that Generator implements LLMGenerator
var _ api.LLMGenerator = (*Generator)(nil)
