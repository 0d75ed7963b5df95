// Package llm provides the language model capabilities used by the
// summarizer and the worker: text completion and embeddings, each behind a
// circuit breaker.
package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/metrics"
)

// ErrUnavailable is returned while a circuit breaker rejects requests.
var ErrUnavailable = errors.New("language model unavailable")

// Backend is a language model provider.
type Backend interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client guards a Backend with per-operation timeouts and circuit breakers.
// It implements summarizer.Completer.
type Client struct {
	backend  Backend
	timeout  time.Duration
	complete *gobreaker.CircuitBreaker[string]
	embed    *gobreaker.CircuitBreaker[[]float32]
}

// NewClient wraps backend. Each breaker opens after cfg.BreakerFailures
// consecutive failures and probes again after cfg.BreakerTimeout.
func NewClient(backend Backend, cfg config.LLMConfig) *Client {
	return &Client{
		backend:  backend,
		timeout:  cfg.Timeout,
		complete: newBreaker[string]("llm-complete", cfg),
		embed:    newBreaker[[]float32]("llm-embed", cfg),
	}
}

func newBreaker[T any](name string, cfg config.LLMConfig) *gobreaker.CircuitBreaker[T] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// Cancellation by the caller says nothing about the model's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

// Complete asks the model to answer user about data under the system prompt.
func (c *Client) Complete(ctx context.Context, system, user, data string) (string, error) {
	start := time.Now()
	text, err := execute(ctx, c, c.complete, func(ctx context.Context) (string, error) {
		return c.backend.Generate(ctx, system, user+"\n\n"+data)
	})
	metrics.RecordLLMRequest("complete", time.Since(start), err)
	return text, err
}

// Embed returns the embedding vector of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := execute(ctx, c, c.embed, func(ctx context.Context) ([]float32, error) {
		return c.backend.Embed(ctx, text)
	})
	metrics.RecordLLMRequest("embed", time.Since(start), err)
	return vec, err
}

func execute[T any](ctx context.Context, c *Client, cb *gobreaker.CircuitBreaker[T], fn func(context.Context) (T, error)) (T, error) {
	res, err := cb.Execute(func() (T, error) {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		return fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, errors.Join(ErrUnavailable, err)
	}
	return res, err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
