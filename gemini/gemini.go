package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/datar-psa/gojudge/api"
)

// Generator wraps a genai.Client to implement the LLMGenerator interface
type Generator struct {
	client          *genai.Client
	modelName       string
	temperature     *float32
	maxOutputTokens int32
}

// Option configures a Generator
type Option func(*Generator)

// WithTemperature sets the sampling temperature sent with every request
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		g.temperature = genai.Ptr(float32(t))
	}
}

// WithMaxOutputTokens caps the length of the judge's answer
func WithMaxOutputTokens(n int) Option {
	return func(g *Generator) {
		g.maxOutputTokens = int32(n)
	}
}

// NewGenerator creates a new Gemini generator
// client: genai.Client from google.golang.org/genai
// modelName: the model to use (e.g., "gemini-2.5-flash")
func NewGenerator(client *genai.Client, modelName string, opts ...Option) *Generator {
	g := &Generator{
		client:    client,
		modelName: modelName,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements LLMGenerator.Generate
func (g *Generator) Generate(ctx context.Context, prompt api.Prompt) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("genai client is required")
	}

	content := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt.User},
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature:     g.temperature,
		MaxOutputTokens: g.maxOutputTokens,
	}
	if prompt.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, []*genai.Content{content}, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no parts in response")
	}

	// Thinking models interleave thought parts; only the answer text is judged.
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// Verify that Generator implements LLMGenerator
var _ api.LLMGenerator = (*Generator)(nil)
