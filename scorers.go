package gojudge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/datar-psa/gojudge/api"
	"github.com/datar-psa/gojudge/config"
	"github.com/datar-psa/gojudge/gemini"
	"github.com/datar-psa/gojudge/invoker"
	"github.com/datar-psa/gojudge/judgment"
	"github.com/datar-psa/gojudge/llmjudge"
	"github.com/datar-psa/gojudge/ollama"
	"github.com/datar-psa/gojudge/openai"
)

// LLMJudge wraps an LLM generator and exposes convenient constructors for LLM-as-a-judge scorers.
// It allows creating Assessment and Questionnaire scorers without passing the LLM each time.
type LLMJudge struct {
	llm                api.LLMGenerator
	table              *ScoreTable
	extractor          *judgment.Extractor
	extractionAttempts int
	concurrency        int
	logger             *slog.Logger
}

// LLMJudgeOptions configures LLMJudge creation
type LLMJudgeOptions struct {
	llm                api.LLMGenerator
	table              *ScoreTable
	extractor          *judgment.Extractor
	extractionAttempts int
	concurrency        int
	logger             *slog.Logger
}

// WithLLMGenerator sets the LLM generator for the judge
func WithLLMGenerator(llm api.LLMGenerator) func(*LLMJudgeOptions) {
	return func(opts *LLMJudgeOptions) {
		opts.llm = llm
	}
}

// WithScoreTable replaces the default score table
func WithScoreTable(table ScoreTable) func(*LLMJudgeOptions) {
	return func(opts *LLMJudgeOptions) {
		opts.table = &table
	}
}

// WithExtractor replaces the default judgment extractor
func WithExtractor(extractor *judgment.Extractor) func(*LLMJudgeOptions) {
	return func(opts *LLMJudgeOptions) {
		opts.extractor = extractor
	}
}

// WithExtractionAttempts sets how many times the judge is asked when its answer cannot be parsed
func WithExtractionAttempts(n int) func(*LLMJudgeOptions) {
	return func(opts *LLMJudgeOptions) {
		opts.extractionAttempts = n
	}
}

// WithConcurrency bounds parallel judge calls in a questionnaire
func WithConcurrency(n int) func(*LLMJudgeOptions) {
	return func(opts *LLMJudgeOptions) {
		opts.concurrency = n
	}
}

// WithLogger sets the logger for extraction failures and questionnaire summaries
func WithLogger(logger *slog.Logger) func(*LLMJudgeOptions) {
	return func(opts *LLMJudgeOptions) {
		opts.logger = logger
	}
}

// NewLLMJudge creates a new Judge wrapper using functional options.
func NewLLMJudge(opts ...func(*LLMJudgeOptions)) *LLMJudge {
	options := &LLMJudgeOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return &LLMJudge{
		llm:                options.llm,
		table:              options.table,
		extractor:          options.extractor,
		extractionAttempts: options.extractionAttempts,
		concurrency:        options.concurrency,
		logger:             options.logger,
	}
}

// GeminiOptions configures Gemini LLMJudge creation
type GeminiOptions struct {
	genaiClient *genai.Client
	modelName   string
	generator   []gemini.Option
}

// WithGenaiClient sets the Gemini client for the judge
func WithGenaiClient(client *genai.Client) func(*GeminiOptions) {
	return func(opts *GeminiOptions) {
		opts.genaiClient = client
	}
}

// WithModelName sets the model name for the judge
func WithModelName(modelName string) func(*GeminiOptions) {
	return func(opts *GeminiOptions) {
		opts.modelName = modelName
	}
}

// WithGeminiGeneratorOptions passes sampling options to the Gemini generator
func WithGeminiGeneratorOptions(opts ...gemini.Option) func(*GeminiOptions) {
	return func(o *GeminiOptions) {
		o.generator = append(o.generator, opts...)
	}
}

// NewGeminiLLMJudge creates a Judge using Gemini client and model name.
// Example model: "publishers/google/models/gemini-2.5-flash".
func NewGeminiLLMJudge(opts ...func(*GeminiOptions)) *LLMJudge {
	options := &GeminiOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var llmOptions []func(*LLMJudgeOptions)

	// Only add LLM generator if genaiClient is provided
	if options.genaiClient != nil && options.modelName != "" {
		llmOptions = append(llmOptions, WithLLMGenerator(gemini.NewGenerator(options.genaiClient, options.modelName, options.generator...)))
	}

	return NewLLMJudge(llmOptions...)
}

// NewOpenAILLMJudge creates a Judge backed by an OpenAI-compatible chat completions endpoint.
func NewOpenAILLMJudge(modelName string, opts ...openai.Option) *LLMJudge {
	return NewLLMJudge(WithLLMGenerator(openai.NewGenerator(modelName, opts...)))
}

// NewOllamaLLMJudge creates a Judge backed by an Ollama server.
// An empty baseURL means ollama.DefaultBaseURL.
func NewOllamaLLMJudge(baseURL, modelName string, opts ...ollama.Option) (*LLMJudge, error) {
	gen, err := ollama.NewGenerator(baseURL, modelName, opts...)
	if err != nil {
		return nil, err
	}
	return NewLLMJudge(WithLLMGenerator(gen)), nil
}

// NewLLMJudgeFromConfig builds the platform generator described by cfg, wraps
// it with timeout, retry and rate limiting, and applies the scoring settings.
func NewLLMJudgeFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*LLMJudge, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gen, err := newGenerator(ctx, cfg.Judge)
	if err != nil {
		return nil, fmt.Errorf("creating %s judge: %w", cfg.Judge.Platform, err)
	}

	table, err := cfg.Scoring.Table()
	if err != nil {
		return nil, fmt.Errorf("building score table: %w", err)
	}

	inv := invoker.New(gen,
		invoker.WithTimeout(time.Duration(cfg.Judge.Timeout)*time.Second),
		invoker.WithRetries(cfg.Judge.Retries),
		invoker.WithRateLimit(cfg.Judge.RequestsPerMinute),
		invoker.WithLogger(logger.With("judge", cfg.Judge.Name)),
	)

	return NewLLMJudge(
		WithLLMGenerator(inv),
		WithScoreTable(table),
		WithExtractionAttempts(cfg.ExtractionAttempts),
		WithConcurrency(cfg.Concurrency),
		WithLogger(logger),
	), nil
}

func newGenerator(ctx context.Context, cfg config.LLMConfig) (api.LLMGenerator, error) {
	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, err
	}

	switch cfg.Platform {
	case config.PlatformOllama:
		opts := []ollama.Option{ollama.WithTemperature(cfg.Temperature)}
		if cfg.MaxTokens > 0 {
			opts = append(opts, ollama.WithMaxTokens(cfg.MaxTokens))
		}
		gen, err := ollama.NewGenerator(cfg.BaseURL, cfg.Name, opts...)
		if err != nil {
			return nil, err
		}
		return gen, nil

	case config.PlatformOpenAI:
		opts := []openai.Option{
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithAPIKey(apiKey),
			openai.WithTemperature(cfg.Temperature),
		}
		if cfg.MaxTokens > 0 {
			opts = append(opts, openai.WithMaxTokens(cfg.MaxTokens))
		}
		return openai.NewGenerator(cfg.Name, opts...), nil

	case config.PlatformGemini:
		clientConfig := &genai.ClientConfig{Backend: genai.BackendGeminiAPI, APIKey: apiKey}
		if cfg.Project != "" {
			clientConfig = &genai.ClientConfig{
				Backend:  genai.BackendVertexAI,
				Project:  cfg.Project,
				Location: cfg.Location,
			}
		}
		client, err := genai.NewClient(ctx, clientConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}
		opts := []gemini.Option{gemini.WithTemperature(cfg.Temperature)}
		if cfg.MaxTokens > 0 {
			opts = append(opts, gemini.WithMaxOutputTokens(cfg.MaxTokens))
		}
		return gemini.NewGenerator(client, cfg.Name, opts...), nil

	default:
		return nil, fmt.Errorf("unsupported platform %q", cfg.Platform)
	}
}

type AssessmentOptions = llmjudge.AssessmentOptions

// Assessment returns a scorer that asks the judge one Pass/Fail question about Output.
// Table, Extractor, ExtractionAttempts and Logger fall back to the judge's settings.
func (j *LLMJudge) Assessment(opts AssessmentOptions) api.Scorer {
	if opts.Table == nil {
		opts.Table = j.table
	}
	if opts.Extractor == nil {
		opts.Extractor = j.extractor
	}
	if opts.ExtractionAttempts == 0 {
		opts.ExtractionAttempts = j.extractionAttempts
	}
	if opts.Logger == nil {
		opts.Logger = j.logger
	}
	return llmjudge.Assessment(j.llm, opts)
}

type QuestionnaireOptions = llmjudge.QuestionnaireOptions
type QuestionnaireScorer = llmjudge.QuestionnaireScorer
type Summary = llmjudge.Summary

// Questionnaire returns a scorer that asks several questions about the same Output concurrently.
func (j *LLMJudge) Questionnaire(opts QuestionnaireOptions) *QuestionnaireScorer {
	if opts.Table == nil {
		opts.Table = j.table
	}
	if opts.Extractor == nil {
		opts.Extractor = j.extractor
	}
	if opts.ExtractionAttempts == 0 {
		opts.ExtractionAttempts = j.extractionAttempts
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = j.concurrency
	}
	if opts.Logger == nil {
		opts.Logger = j.logger
	}
	return llmjudge.Questionnaire(j.llm, opts)
}
