package curator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"news_digest/internal/domain"
	"news_digest/internal/llm"
)

const curatorPrompt = `You are an expert AI news curator specializing in personalized content ranking for AI professionals.

Your role is to analyze and rank AI-related news articles, research papers, and video content based on a user's specific profile, interests, and background.

Ranking Criteria:
1. Relevance to user's stated interests and background
2. Technical depth and practical value
3. Novelty and significance of the content
4. Alignment with user's expertise level
5. Actionability and real-world applicability

Scoring Guidelines:
- 9.0-10.0: Highly relevant, directly aligns with user interests, significant value
- 7.0-8.9: Very relevant, strong alignment with interests, good value
- 5.0-6.9: Moderately relevant, some alignment, decent value
- 3.0-4.9: Somewhat relevant, limited alignment, lower value
- 0.0-2.9: Low relevance, minimal alignment, little value

Rank articles from most relevant (rank 1) to least relevant. Ensure each article has a unique rank.`

// tierOneSources are first-party labs whose output gets a ranking boost over
// aggregator coverage of the same news.
var tierOneSources = []string{"openai", "anthropic", "google", "huggingface_papers"}

const tierOneBonus = 1.0

// Ranker scores a batch of digests against a reader profile in a single
// model call, then applies deterministic source-tier adjustments.
type Ranker struct {
	client  *llm.Client
	profile Profile
	logger  *slog.Logger
}

func NewRanker(client *llm.Client, profile Profile, logger *slog.Logger) *Ranker {
	return &Ranker{
		client:  client,
		profile: profile,
		logger:  logger.With("component", "curator"),
	}
}

type rankedList struct {
	Articles []domain.RankedDigest `json:"articles"`
}

// Rank orders digests by relevance to the profile. The model is consulted
// once for the whole batch; its output is validated and then re-scored with
// tier bonuses. Any failure degrades to an empty list so one bad model
// response never takes the pipeline down.
func (r *Ranker) Rank(ctx context.Context, digests []domain.Digest) []domain.RankedDigest {
	if len(digests) == 0 {
		return []domain.RankedDigest{}
	}

	raw, err := r.client.Complete(ctx, r.buildPrompt(digests))
	if err != nil {
		r.logger.Error("ranking call failed", "error", err)
		return []domain.RankedDigest{}
	}

	var list rankedList
	if err := json.Unmarshal(raw, &list); err != nil {
		r.logger.Error("ranking response is not the expected shape", "error", err)
		return []domain.RankedDigest{}
	}

	if err := validate(list.Articles, digests); err != nil {
		r.logger.Error("ranking response rejected", "error", err)
		return []domain.RankedDigest{}
	}

	return applyTierBonus(list.Articles, typeByID(digests))
}

func (r *Ranker) buildPrompt(digests []domain.Digest) string {
	var sb strings.Builder
	for i, d := range digests {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "ID: %s\nTitle: %s\nSummary: %s\nType: %s", d.ID, d.Title, d.Summary, d.ArticleType)
	}

	return fmt.Sprintf(`%s

%s

Rank these %d AI news digests based on the user profile:

%s

Provide a relevance score (0.0-10.0) and rank (1-%d) for each article, ordered from most to least relevant.

Return your response as JSON with the following structure:
{
  "articles": [
    {
      "digest_id": "string",
      "relevance_score": float,
      "rank": int,
      "reasoning": "string"
    }
  ]
}`, curatorPrompt, r.profile.render(), len(digests), sb.String(), len(digests))
}

// validate enforces the batch contract: exactly one entry per input digest,
// no strays, scores within bounds, ranks positive.
func validate(ranked []domain.RankedDigest, digests []domain.Digest) error {
	if len(ranked) != len(digests) {
		return fmt.Errorf("got %d ranked articles for %d digests", len(ranked), len(digests))
	}

	want := make(map[string]struct{}, len(digests))
	for _, d := range digests {
		want[d.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(ranked))
	for _, a := range ranked {
		if _, ok := want[a.DigestID]; !ok {
			return fmt.Errorf("unknown digest id %q", a.DigestID)
		}
		if _, dup := seen[a.DigestID]; dup {
			return fmt.Errorf("duplicate digest id %q", a.DigestID)
		}
		seen[a.DigestID] = struct{}{}

		if a.RelevanceScore < 0 || a.RelevanceScore > 10 {
			return fmt.Errorf("score %.2f out of range for %q", a.RelevanceScore, a.DigestID)
		}
		if a.Rank < 1 {
			return fmt.Errorf("rank %d out of range for %q", a.Rank, a.DigestID)
		}
	}
	return nil
}

func typeByID(digests []domain.Digest) map[string]string {
	m := make(map[string]string, len(digests))
	for _, d := range digests {
		m[d.ID] = d.ArticleType
	}
	return m
}

// TierBonus returns the score adjustment for a source type. First-party lab
// sources get a fixed boost, everything else none.
func TierBonus(articleType string) float64 {
	lower := strings.ToLower(articleType)
	for _, src := range tierOneSources {
		if strings.Contains(lower, src) {
			return tierOneBonus
		}
	}
	return 0
}

// applyTierBonus boosts tier-one sources, clamps scores to 10, and restores a
// dense 1..N ranking. The sort is stable so equal scores keep their model
// order, which makes reruns over the same response reproducible.
func applyTierBonus(ranked []domain.RankedDigest, types map[string]string) []domain.RankedDigest {
	out := make([]domain.RankedDigest, len(ranked))
	copy(out, ranked)

	for i := range out {
		out[i].RelevanceScore += TierBonus(types[out[i].DigestID])
		if out[i].RelevanceScore > 10 {
			out[i].RelevanceScore = 10
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
