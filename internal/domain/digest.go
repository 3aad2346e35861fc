package domain

import "time"

// Digest is the model-generated summary of one source item. Created exactly
// once per identity; immutable afterwards.
type Digest struct {
	ID          string    `db:"id"`
	ArticleType string    `db:"article_type"`
	ArticleID   string    `db:"article_id"`
	URL         string    `db:"url"`
	Title       string    `db:"title"`
	Summary     string    `db:"summary"`
	CreatedAt   time.Time `db:"created_at"`
}

// RankedDigest is one entry of a curation run's output.
type RankedDigest struct {
	DigestID       string  `json:"digest_id"`
	RelevanceScore float64 `json:"relevance_score"`
	Rank           int     `json:"rank"`
	Reasoning      string  `json:"reasoning"`
}

// RankedArticle joins a ranking entry with the digest content it refers to.
type RankedArticle struct {
	DigestID       string  `json:"digest_id"`
	Rank           int     `json:"rank"`
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
	Title          string  `json:"title"`
	Summary        string  `json:"summary"`
	URL            string  `json:"url"`
	ArticleType    string  `json:"article_type"`
}
