package email

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

const writerPrompt = `You are an expert email writer specializing in creating engaging, personalized AI news digests.

Your role is to write a warm, professional introduction for a daily AI news digest email that:
- Greets the user by name
- Includes the current date
- Provides a brief, engaging overview of what's coming in the top 10 ranked articles
- Highlights the most interesting or important themes
- Sets expectations for the content ahead

Keep it concise (2-3 sentences for the introduction), friendly, and professional.`

const dateLayout = "January 02, 2006"

// Assembler builds the per-subscriber email digest: a model-written
// introduction over the shared ranked articles, with deterministic fallbacks
// when the model cannot deliver.
type Assembler struct {
	client   *llm.Client
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

func NewAssembler(client *llm.Client, location *time.Location, logger *slog.Logger) *Assembler {
	return &Assembler{
		client:   client,
		location: location,
		logger:   logger.With("component", "email_assembler"),
		now:      time.Now,
	}
}

// BuildDigest assembles the email payload for one subscriber. Articles are
// already ranked and shared across subscribers; only the introduction is
// personalized.
func (a *Assembler) BuildDigest(ctx context.Context, name string, articles []domain.RankedArticle, totalRanked, topN int) domain.EmailDigest {
	top := articles
	if len(top) > topN {
		top = top[:topN]
	}
	return domain.EmailDigest{
		Introduction: a.Introduction(ctx, name, top),
		Articles:     top,
		TotalRanked:  totalRanked,
		TopN:         topN,
	}
}

// Introduction writes the greeting and overview. An empty article list, a
// model failure, or a greeting that drops the subscriber's name all fall back
// to fixed wording rather than failing the send.
func (a *Assembler) Introduction(ctx context.Context, name string, articles []domain.RankedArticle) domain.EmailIntroduction {
	date := a.now().In(a.location).Format(dateLayout)
	greeting := fmt.Sprintf("Hey %s, here is your daily digest of AI news for %s.", name, date)

	if len(articles) == 0 {
		return domain.EmailIntroduction{
			Greeting:     greeting,
			Introduction: "No articles were ranked today.",
		}
	}

	raw, err := a.client.Complete(ctx, a.buildPrompt(name, date, articles))
	if err != nil {
		a.logger.Warn("introduction generation failed, using fallback", "error", err)
		return domain.EmailIntroduction{
			Greeting:     greeting,
			Introduction: "Here are the top 10 AI news articles ranked by relevance to your interests.",
		}
	}

	var intro domain.EmailIntroduction
	if err := json.Unmarshal(raw, &intro); err != nil || strings.TrimSpace(intro.Introduction) == "" {
		a.logger.Warn("introduction response is not the expected shape", "error", err)
		return domain.EmailIntroduction{
			Greeting:     greeting,
			Introduction: "Here are the top 10 AI news articles ranked by relevance to your interests.",
		}
	}

	if !strings.HasPrefix(intro.Greeting, "Hey "+name) {
		intro.Greeting = greeting
	}
	return intro
}

func (a *Assembler) buildPrompt(name, date string, articles []domain.RankedArticle) string {
	var summaries strings.Builder
	for i, article := range articles {
		if i > 0 {
			summaries.WriteString("\n")
		}
		fmt.Fprintf(&summaries, "%d. %s (Score: %.1f/10)", i+1, article.Title, article.RelevanceScore)
	}

	return fmt.Sprintf(`%s

Create an email introduction for %s for %s.

Top 10 ranked articles:
%s

Generate a greeting and introduction that previews these articles.

Return your response as JSON with the following structure:
{
  "greeting": "string",
  "introduction": "string"
}`, writerPrompt, name, date, summaries.String())
}

// Subject is the shared subject line for a daily send.
func (a *Assembler) Subject() string {
	return fmt.Sprintf("Your Daily AI News Digest - %s 📰", a.now().In(a.location).Format(dateLayout))
}
