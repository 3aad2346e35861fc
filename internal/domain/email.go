package domain

import "time"

// Subscriber is one recipient of the daily digest.
type Subscriber struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

// DisplayName falls back to a neutral salutation when no name was given.
func (s Subscriber) DisplayName() string {
	if s.Name == "" {
		return "there"
	}
	return s.Name
}

// EmailIntroduction is the personalized opening of one digest email.
type EmailIntroduction struct {
	Greeting     string `json:"greeting"`
	Introduction string `json:"introduction"`
}

// EmailDigest is the assembled payload for one subscriber. Ephemeral; it is
// rendered and sent, never persisted.
type EmailDigest struct {
	Introduction EmailIntroduction `json:"introduction"`
	Articles     []RankedArticle   `json:"articles"`
	TotalRanked  int               `json:"total_ranked"`
	TopN         int               `json:"top_n"`
}
