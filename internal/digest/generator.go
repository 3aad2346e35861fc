package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"news_digest/internal/domain"
	"news_digest/internal/llm"
)

const analystPrompt = `You are an expert AI news analyst specializing in summarizing technical articles, research papers, and video content about artificial intelligence.

Your role is to create concise, informative digests that help readers quickly understand the key points and significance of AI-related content.

Guidelines:
- Create a compelling title (5-10 words) that captures the essence of the content
- Write a 2-3 sentence summary that highlights the main points and why they matter
- Focus on actionable insights and implications
- Use clear, accessible language while maintaining technical accuracy
- Avoid marketing fluff - focus on substance

Return your response as JSON with fields: title (string), summary (string)`

// Generator turns source items into digests via the shared model client.
type Generator struct {
	client          *llm.Client
	maxContentChars int
	logger          *slog.Logger
	now             func() time.Time
}

func NewGenerator(client *llm.Client, maxContentChars int, logger *slog.Logger) *Generator {
	return &Generator{
		client:          client,
		maxContentChars: maxContentChars,
		logger:          logger.With("component", "digest_generator"),
		now:             time.Now,
	}
}

type digestOutput struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Generate produces a digest for one source item. The digest's id binds it to
// the item, and its created_at inherits the item's publication time so the
// ranking window reflects when the content appeared, not when it was digested.
func (g *Generator) Generate(ctx context.Context, item domain.SourceItem) (*domain.Digest, error) {
	prompt := fmt.Sprintf("%s\n\nCreate a digest for this %s: \n Title: %s \n Content: %s",
		analystPrompt, item.SourceType, item.Title, truncate(item.Content, g.maxContentChars))

	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out digestOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &llm.ParseError{Raw: string(raw)}
	}

	if strings.TrimSpace(out.Title) == "" {
		return nil, &llm.ValidationError{Reason: "digest has empty title"}
	}
	if strings.TrimSpace(out.Summary) == "" {
		return nil, &llm.ValidationError{Reason: "digest has empty summary"}
	}

	createdAt := g.now().UTC()
	if item.PublishedAt != nil {
		createdAt = item.PublishedAt.UTC()
	}

	return &domain.Digest{
		ID:          domain.DigestID(item.SourceType, item.SourceID),
		ArticleType: item.SourceType,
		ArticleID:   item.SourceID,
		URL:         item.URL,
		Title:       out.Title,
		Summary:     out.Summary,
		CreatedAt:   createdAt,
	}, nil
}

// truncate limits content to max runes without splitting a multibyte character.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
