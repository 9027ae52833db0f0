// Package invoker calls a judge model under a per-call timeout, a retry policy
// with exponential backoff and an optional client-side rate limit.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/datar-psa/gojudge/api"
)

const (
	DefaultTimeout         = 30 * time.Second
	DefaultRetries         = 1
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 10 * time.Second
)

// ErrEmptyResponse is returned when the model answers with no text
var ErrEmptyResponse = errors.New("judge model returned an empty response")

// Permanent marks a generator error that must not be retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Invoker wraps an LLMGenerator with timeout, retry and rate limiting.
// It implements api.LLMGenerator itself.
type Invoker struct {
	gen             api.LLMGenerator
	timeout         time.Duration
	retries         int
	initialInterval time.Duration
	maxInterval     time.Duration
	limiter         *rate.Limiter
	logger          *slog.Logger
}

// Option configures an Invoker
type Option func(*Invoker)

// WithTimeout bounds each individual model call.
func WithTimeout(d time.Duration) Option {
	return func(i *Invoker) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithRetries sets the total number of attempts per Generate call.
func WithRetries(n int) Option {
	return func(i *Invoker) {
		if n > 0 {
			i.retries = n
		}
	}
}

// WithBackoff sets the first and the largest wait between attempts.
func WithBackoff(initial, max time.Duration) Option {
	return func(i *Invoker) {
		if initial > 0 {
			i.initialInterval = initial
		}
		if max > 0 {
			i.maxInterval = max
		}
	}
}

// WithRateLimit allows at most perMinute calls to start per minute. Zero disables the limit.
func WithRateLimit(perMinute int) Option {
	return func(i *Invoker) {
		if perMinute > 0 {
			i.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
		}
	}
}

// WithLogger sets the logger used for retry and failure reports
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoker) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New wraps gen. Without options a call gets DefaultTimeout and a single attempt.
func New(gen api.LLMGenerator, opts ...Option) *Invoker {
	i := &Invoker{
		gen:             gen,
		timeout:         DefaultTimeout,
		retries:         DefaultRetries,
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Generate implements LLMGenerator.Generate
func (i *Invoker) Generate(ctx context.Context, prompt api.Prompt) (string, error) {
	if i.gen == nil {
		return "", fmt.Errorf("LLM generator is required")
	}

	attempts := 0
	operation := func() (string, error) {
		attempts++
		if i.limiter != nil {
			if err := i.limiter.Wait(ctx); err != nil {
				return "", backoff.Permanent(err)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, i.timeout)
		defer cancel()

		text, err := i.gen.Generate(callCtx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return "", backoff.Permanent(ctx.Err())
			}
			return "", err
		}
		if text == "" {
			return "", ErrEmptyResponse
		}
		return text, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = i.initialInterval
	policy.MaxInterval = i.maxInterval

	text, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(i.retries)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			i.logger.WarnContext(ctx, "judge model call failed, retrying",
				slog.Int("attempt", attempts),
				slog.Int("max_attempts", i.retries),
				slog.Duration("wait", wait),
				slog.Any("error", err))
		}),
	)
	if err != nil {
		i.logger.ErrorContext(ctx, "judge model call failed",
			slog.Int("attempts", attempts),
			slog.Any("error", err))
		return "", fmt.Errorf("judge model call failed after %d attempt(s): %w", attempts, err)
	}
	return text, nil
}

// Verify that Invoker implements LLMGenerator
var _ api.LLMGenerator = (*Invoker)(nil)
