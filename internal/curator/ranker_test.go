package curator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news_digest/internal/config"
	"news_digest/internal/domain"
	"news_digest/internal/llm"
)

type scriptedCompleter struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	return s.response, s.err
}

func newTestRanker(completer llm.Completer) *Ranker {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := llm.NewClient(completer, config.ModelConfig{MaxRetries: 1}, logger)
	return NewRanker(client, DefaultProfile("Tester"), logger)
}

func rankedJSON(articles []domain.RankedDigest) string {
	b, _ := json.Marshal(map[string]any{"articles": articles})
	return string(b)
}

func sampleDigests() []domain.Digest {
	return []domain.Digest{
		{ID: "openai:1", ArticleType: "openai", Title: "A", Summary: "a"},
		{ID: "techcrunch:2", ArticleType: "techcrunch", Title: "B", Summary: "b"},
		{ID: "anthropic:3", ArticleType: "anthropic", Title: "C", Summary: "c"},
	}
}

func TestRank_SingleBatchCall(t *testing.T) {
	completer := &scriptedCompleter{response: rankedJSON([]domain.RankedDigest{
		{DigestID: "openai:1", RelevanceScore: 7.0, Rank: 1, Reasoning: "r"},
		{DigestID: "techcrunch:2", RelevanceScore: 7.0, Rank: 2, Reasoning: "r"},
		{DigestID: "anthropic:3", RelevanceScore: 6.0, Rank: 3, Reasoning: "r"},
	})}
	ranker := newTestRanker(completer)

	got := ranker.Rank(context.Background(), sampleDigests())
	require.Len(t, got, 3)
	assert.Equal(t, 1, completer.calls, "whole batch goes through one model call")

	// Tier bonus lifts the lab sources; equal-score entries keep their
	// pre-bonus relative order.
	assert.Equal(t, "openai:1", got[0].DigestID)
	assert.InDelta(t, 8.0, got[0].RelevanceScore, 1e-9)
	assert.Equal(t, "techcrunch:2", got[1].DigestID)
	assert.InDelta(t, 7.0, got[1].RelevanceScore, 1e-9)
	assert.Equal(t, "anthropic:3", got[2].DigestID)
	assert.InDelta(t, 7.0, got[2].RelevanceScore, 1e-9)

	for i, a := range got {
		assert.Equal(t, i+1, a.Rank)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	completer := &scriptedCompleter{}
	ranker := newTestRanker(completer)

	got := ranker.Rank(context.Background(), nil)
	assert.Empty(t, got)
	assert.Zero(t, completer.calls, "no model call for an empty batch")
}

func TestRank_ModelFailureDegradesToEmpty(t *testing.T) {
	completer := &scriptedCompleter{err: &llm.ProviderError{Status: 500, Detail: "down"}}
	ranker := newTestRanker(completer)

	got := ranker.Rank(context.Background(), sampleDigests())
	assert.Empty(t, got)
}

func TestRank_MalformedResponseDegradesToEmpty(t *testing.T) {
	completer := &scriptedCompleter{response: "not json at all"}
	ranker := newTestRanker(completer)

	assert.Empty(t, ranker.Rank(context.Background(), sampleDigests()))
}

func TestRank_RejectsInvalidBatches(t *testing.T) {
	tests := []struct {
		name     string
		articles []domain.RankedDigest
	}{
		{
			name: "missing entry",
			articles: []domain.RankedDigest{
				{DigestID: "openai:1", RelevanceScore: 5, Rank: 1},
				{DigestID: "techcrunch:2", RelevanceScore: 4, Rank: 2},
			},
		},
		{
			name: "unknown id",
			articles: []domain.RankedDigest{
				{DigestID: "openai:1", RelevanceScore: 5, Rank: 1},
				{DigestID: "techcrunch:2", RelevanceScore: 4, Rank: 2},
				{DigestID: "mystery:9", RelevanceScore: 3, Rank: 3},
			},
		},
		{
			name: "duplicate id",
			articles: []domain.RankedDigest{
				{DigestID: "openai:1", RelevanceScore: 5, Rank: 1},
				{DigestID: "openai:1", RelevanceScore: 4, Rank: 2},
				{DigestID: "anthropic:3", RelevanceScore: 3, Rank: 3},
			},
		},
		{
			name: "score out of range",
			articles: []domain.RankedDigest{
				{DigestID: "openai:1", RelevanceScore: 11, Rank: 1},
				{DigestID: "techcrunch:2", RelevanceScore: 4, Rank: 2},
				{DigestID: "anthropic:3", RelevanceScore: 3, Rank: 3},
			},
		},
		{
			name: "rank below one",
			articles: []domain.RankedDigest{
				{DigestID: "openai:1", RelevanceScore: 5, Rank: 0},
				{DigestID: "techcrunch:2", RelevanceScore: 4, Rank: 2},
				{DigestID: "anthropic:3", RelevanceScore: 3, Rank: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranker := newTestRanker(&scriptedCompleter{response: rankedJSON(tt.articles)})
			assert.Empty(t, ranker.Rank(context.Background(), sampleDigests()))
		})
	}
}

func TestRank_ScoreClampedAtTen(t *testing.T) {
	completer := &scriptedCompleter{response: rankedJSON([]domain.RankedDigest{
		{DigestID: "openai:1", RelevanceScore: 9.8, Rank: 1},
		{DigestID: "techcrunch:2", RelevanceScore: 1.0, Rank: 2},
		{DigestID: "anthropic:3", RelevanceScore: 2.0, Rank: 3},
	})}
	ranker := newTestRanker(completer)

	got := ranker.Rank(context.Background(), sampleDigests())
	require.Len(t, got, 3)
	assert.InDelta(t, 10.0, got[0].RelevanceScore, 1e-9)
}

func TestRank_PromptContainsDigestsAndProfile(t *testing.T) {
	completer := &scriptedCompleter{response: rankedJSON([]domain.RankedDigest{
		{DigestID: "openai:1", RelevanceScore: 5, Rank: 1},
		{DigestID: "techcrunch:2", RelevanceScore: 4, Rank: 2},
		{DigestID: "anthropic:3", RelevanceScore: 3, Rank: 3},
	})}
	ranker := newTestRanker(completer)
	ranker.Rank(context.Background(), sampleDigests())

	assert.Contains(t, completer.lastPrompt, "ID: openai:1")
	assert.Contains(t, completer.lastPrompt, "Rank these 3 AI news digests")
	assert.Contains(t, completer.lastPrompt, "Name: Tester")
	assert.Contains(t, completer.lastPrompt, "Expertise Level: Advanced")
}

func TestTierBonus(t *testing.T) {
	tests := []struct {
		articleType string
		want        float64
	}{
		{"openai", 1.0},
		{"anthropic", 1.0},
		{"google", 1.0},
		{"google_blog", 1.0},
		{"huggingface_papers", 1.0},
		{"OpenAI", 1.0},
		{"techcrunch", 0},
		{"venturebeat", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.articleType), func(t *testing.T) {
			assert.Equal(t, tt.want, TierBonus(tt.articleType))
		})
	}
}

func TestApplyTierBonus_StableOnEqualScores(t *testing.T) {
	types := map[string]string{
		"techcrunch:1": "techcrunch",
		"techcrunch:2": "techcrunch",
		"techcrunch:3": "techcrunch",
	}
	ranked := []domain.RankedDigest{
		{DigestID: "techcrunch:1", RelevanceScore: 5, Rank: 1},
		{DigestID: "techcrunch:2", RelevanceScore: 5, Rank: 2},
		{DigestID: "techcrunch:3", RelevanceScore: 5, Rank: 3},
	}

	got := applyTierBonus(ranked, types)
	assert.Equal(t, "techcrunch:1", got[0].DigestID)
	assert.Equal(t, "techcrunch:2", got[1].DigestID)
	assert.Equal(t, "techcrunch:3", got[2].DigestID)
}
