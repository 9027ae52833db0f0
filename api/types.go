package api

import "context"

// Prompt is the system/user message pair sent to a judge model
type Prompt struct {
	// System sets the judge's role and ground rules
	System string
	// User carries the assessment question, the student material and the output format
	User string
}

// LLMGenerator is an interface for obtaining raw text from a judge model.
// This interface must be implemented by library consumers
// Gemini, OpenAI-compatible and Ollama implementations are provided in subpackages,
// and the invoker subpackage adds timeouts, retries and rate limiting on top of any of them
type LLMGenerator interface {
	// Generate sends the prompt pair to the model
	// Returns the model's raw text answer or an error
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// LLMGeneratorFunc adapts a function to the LLMGenerator interface
type LLMGeneratorFunc func(ctx context.Context, prompt Prompt) (string, error)

// Generate calls f(ctx, prompt)
func (f LLMGeneratorFunc) Generate(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}

// Score represents the result of an evaluation
type Score struct {
	// Name identifies the scorer that produced this result
	Name string
	// Score is a value between 0 and 1, where 1 is the best possible score
	Score float64
	// Metadata contains additional information about the scoring process
	Metadata map[string]any
	// Error contains any error that occurred during scoring
	// A non-nil Error means the response could not be judged; Score is then meaningless
	Error error
}

// ScoreInputs carries inputs for scoring across different scorers.
//
// Fields usage conventions:
// - Output:   the student response being judged (required)
// - Expected: a reference answer shown to the judge (optional)
// - Input:    the instruction the student was given (optional)
type ScoreInputs struct {
	Output   string
	Expected string
	Input    string
}

// Scorer evaluates the quality of an output
type Scorer interface {
	// Score evaluates the output and returns a score
	// in: container for output/expected/input depending on scorer needs
	Score(ctx context.Context, in ScoreInputs) Score
}
