package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// RateLimitedError is the only retryable call outcome. SuggestedDelay is the
// provider's own retry hint when one was present in the error payload.
type RateLimitedError struct {
	SuggestedDelay time.Duration
	Detail         string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: %s", e.Detail)
}

// ProviderError is any non-retryable provider failure.
type ProviderError struct {
	Status int
	Detail string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("provider error: %s", e.Detail)
}

// ParseError means the model returned text that is not valid JSON even after
// one repair pass.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	raw := e.Raw
	if len(raw) > 200 {
		raw = raw[:200] + "..."
	}
	return fmt.Sprintf("unparseable model output: %s", raw)
}

// ValidationError means the output parsed but violates the caller's schema.
// Item-level; never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model output validation: %s", e.Reason)
}

var delayExpr = regexp.MustCompile(`(\d+\.?\d*)s`)

// parseSuggestedDelay pulls a "retry in Ns" hint out of a provider error
// message. Returns 0 when no hint is present.
func parseSuggestedDelay(msg string) time.Duration {
	match := delayExpr.FindStringSubmatch(msg)
	if match == nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
