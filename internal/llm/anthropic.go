package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicCompleter struct {
	client *anthropic.Client
	model  anthropic.Model
}

func newAnthropicCompleter(apiKey, model string) *anthropicCompleter {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	m := anthropic.ModelClaudeHaiku4_5
	if model != "" {
		m = anthropic.Model(model)
	}
	return &anthropicCompleter{client: &client, model: m}
}

func (c *anthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			if apierr.StatusCode == http.StatusTooManyRequests {
				return "", &RateLimitedError{
					SuggestedDelay: parseSuggestedDelay(apierr.Error()),
					Detail:         apierr.Error(),
				}
			}
			return "", &ProviderError{Status: apierr.StatusCode, Detail: apierr.Error()}
		}
		return "", &ProviderError{Detail: err.Error()}
	}

	if len(resp.Content) == 0 {
		return "", &ProviderError{Detail: "empty response from anthropic"}
	}
	return resp.Content[0].Text, nil
}
