package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"news_digest/internal/config"
)

// Completer is one round trip to a generative model: prompt in, raw text out.
// Implementations map provider failures onto RateLimitedError/ProviderError.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client wraps a Completer with the call discipline every model-consuming
// component shares: minimum spacing between calls, bounded retries with
// exponential backoff on rate limits, and JSON normalization of the output.
//
// One Client instance is constructed per process and injected by reference
// into every component that talks to the model, so the spacing is enforced
// globally rather than per component.
type Client struct {
	completer   Completer
	minInterval time.Duration
	maxRetries  int
	baseDelay   time.Duration
	logger      *slog.Logger

	sleep func(time.Duration)
	now   func() time.Time

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient builds the shared rate-limited client.
func NewClient(completer Completer, cfg config.ModelConfig, logger *slog.Logger) *Client {
	return &Client{
		completer:   completer,
		minInterval: cfg.MinInterval,
		maxRetries:  cfg.MaxRetries,
		baseDelay:   cfg.BaseDelay,
		logger:      logger.With("component", "llm"),
		sleep:       time.Sleep,
		now:         time.Now,
	}
}

// NewCompleter selects the provider implementation from config.
func NewCompleter(cfg config.ModelConfig) (Completer, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAICompleter(cfg.APIKey, cfg.Model), nil
	case "anthropic":
		return newAnthropicCompleter(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// Complete issues one logical model call and returns its output as valid
// JSON. Rate-limit failures are retried up to maxRetries with exponential
// backoff; any other failure aborts immediately. Callers degrade on error,
// they never crash.
func (c *Client) Complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		c.waitTurn()

		text, err := c.completer.Complete(ctx, prompt)
		if err == nil {
			return extractJSON(text)
		}

		var rl *RateLimitedError
		if !errors.As(err, &rl) {
			return nil, err
		}

		lastErr = err
		if attempt == c.maxRetries-1 {
			break
		}

		delay := retryDelay(attempt, c.baseDelay, rl.SuggestedDelay)
		c.logger.Warn("rate limit hit, retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"delay", delay,
		)
		c.sleep(delay)
	}

	return nil, fmt.Errorf("rate limit exceeded after %d attempts: %w", c.maxRetries, lastErr)
}

// waitTurn blocks until minInterval has elapsed since the previous call.
func (c *Client) waitTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := c.now().Sub(c.lastCall)
	if !c.lastCall.IsZero() && elapsed < c.minInterval {
		wait := c.minInterval - elapsed
		c.logger.Debug("rate limiting", "wait", wait)
		c.sleep(wait)
	}
	c.lastCall = c.now()
}

// backoff is the delay before retry number attempt (0-based) absent a
// provider hint: base * 2^attempt.
func backoff(attempt int, base time.Duration) time.Duration {
	return base * time.Duration(1<<attempt)
}

// retryDelay prefers the provider-suggested delay plus a one-second grace
// over the computed backoff.
func retryDelay(attempt int, base, suggested time.Duration) time.Duration {
	if suggested > 0 {
		return suggested + time.Second
	}
	return backoff(attempt, base)
}
