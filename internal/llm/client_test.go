package llm

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news_digest/internal/config"
)

type fakeCompleter struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var text string
	if i < len(f.responses) {
		text = f.responses[i]
	}
	return text, err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(completer Completer) (*Client, *[]time.Duration) {
	client := NewClient(completer, config.ModelConfig{
		MinInterval: 6500 * time.Millisecond,
		MaxRetries:  3,
		BaseDelay:   10 * time.Second,
	}, testLogger())

	var slept []time.Duration
	client.sleep = func(d time.Duration) { slept = append(slept, d) }
	// Zero clock keeps lastCall unset so waitTurn never adds its own sleeps.
	client.now = func() time.Time { return time.Time{} }

	return client, &slept
}

func TestBackoff(t *testing.T) {
	base := 10 * time.Second
	assert.Equal(t, 10*time.Second, backoff(0, base))
	assert.Equal(t, 20*time.Second, backoff(1, base))
	assert.Equal(t, 40*time.Second, backoff(2, base))
}

func TestRetryDelay_PrefersSuggested(t *testing.T) {
	got := retryDelay(2, 10*time.Second, 17*time.Second)
	assert.Equal(t, 18*time.Second, got)

	got = retryDelay(1, 10*time.Second, 0)
	assert.Equal(t, 20*time.Second, got)
}

func TestParseSuggestedDelay(t *testing.T) {
	assert.Equal(t, 30*time.Second, parseSuggestedDelay("please retry in 30s"))
	assert.Equal(t, 2500*time.Millisecond, parseSuggestedDelay("retryDelay: 2.5s"))
	assert.Equal(t, time.Duration(0), parseSuggestedDelay("quota exhausted"))
}

func TestComplete_Success(t *testing.T) {
	completer := &fakeCompleter{responses: []string{`{"a":1}`}}
	client, _ := newTestClient(completer)

	raw, err := client.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))
	assert.Equal(t, 1, completer.calls)
}

func TestComplete_RetriesOnRateLimit(t *testing.T) {
	completer := &fakeCompleter{
		errs:      []error{&RateLimitedError{}, &RateLimitedError{}, nil},
		responses: []string{"", "", `{"ok":true}`},
	}
	client, slept := newTestClient(completer)

	raw, err := client.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, 3, completer.calls)

	require.Len(t, *slept, 2)
	assert.Equal(t, 10*time.Second, (*slept)[0])
	assert.Equal(t, 20*time.Second, (*slept)[1])
}

func TestComplete_HonorsSuggestedDelay(t *testing.T) {
	completer := &fakeCompleter{
		errs:      []error{&RateLimitedError{SuggestedDelay: 7 * time.Second}, nil},
		responses: []string{"", `{}`},
	}
	client, slept := newTestClient(completer)

	_, err := client.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	require.Len(t, *slept, 1)
	assert.Equal(t, 8*time.Second, (*slept)[0])
}

func TestComplete_GivesUpAfterMaxRetries(t *testing.T) {
	completer := &fakeCompleter{
		errs: []error{&RateLimitedError{}, &RateLimitedError{}, &RateLimitedError{}},
	}
	client, _ := newTestClient(completer)

	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, 3, completer.calls)

	var rl *RateLimitedError
	assert.True(t, errors.As(err, &rl))
}

func TestComplete_NoRetryOnProviderError(t *testing.T) {
	completer := &fakeCompleter{
		errs: []error{&ProviderError{Status: 500, Detail: "boom"}},
	}
	client, slept := newTestClient(completer)

	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, 1, completer.calls)
	assert.Empty(t, *slept)

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe))
}

func TestWaitTurn_SpacesCalls(t *testing.T) {
	client, slept := newTestClient(&fakeCompleter{responses: []string{`{}`, `{}`}})

	base := time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)
	clock := base
	client.now = func() time.Time { return clock }

	client.waitTurn()
	assert.Empty(t, *slept, "first call never waits")

	clock = base.Add(2 * time.Second)
	client.waitTurn()
	require.Len(t, *slept, 1)
	assert.Equal(t, 4500*time.Millisecond, (*slept)[0])

	clock = clock.Add(time.Minute)
	client.waitTurn()
	assert.Len(t, *slept, 1, "no wait once the interval has passed")
}
