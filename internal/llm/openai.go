package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAICompleter struct {
	client *openai.Client
	model  openai.ChatModel
}

// newOpenAICompleter disables the SDK's own retries; the shared Client owns
// retry policy.
func newOpenAICompleter(apiKey, model string) *openAICompleter {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	m := openai.ChatModelGPT4oMini
	if model != "" {
		m = openai.ChatModel(model)
	}
	return &openAICompleter{client: &client, model: m}
}

func (c *openAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apierr *openai.Error
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

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Detail: "empty response from openai"}
	}
	return resp.Choices[0].Message.Content, nil
}
