package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"news_digest/internal/domain"
)

// Source pulls fresh items from one upstream feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context, hours int) ([]domain.SourceItem, error)
}

// ItemStore persists raw source items.
type ItemStore interface {
	UpsertBatch(ctx context.Context, items []domain.SourceItem) (int, error)
	ListWithContent(ctx context.Context, hours int) ([]domain.SourceItem, error)
}

// DigestStore persists generated digests. Create reports whether a new row
// was written; an existing identity is left untouched.
type DigestStore interface {
	Create(ctx context.Context, digest domain.Digest) (bool, error)
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)
	Recent(ctx context.Context, hours int) ([]domain.Digest, error)
}

// SubscriberStore reads the recipient list.
type SubscriberStore interface {
	ListActive(ctx context.Context) ([]domain.Subscriber, error)
}

// Generator summarizes one source item into a digest.
type Generator interface {
	Generate(ctx context.Context, item domain.SourceItem) (*domain.Digest, error)
}

// Ranker orders a digest batch by relevance. It degrades to an empty list on
// failure instead of returning an error.
type Ranker interface {
	Rank(ctx context.Context, digests []domain.Digest) []domain.RankedDigest
}

// Assembler builds the per-subscriber email payload.
type Assembler interface {
	BuildDigest(ctx context.Context, name string, articles []domain.RankedArticle, totalRanked, topN int) domain.EmailDigest
	Subject() string
}

// Sender delivers one rendered email.
type Sender interface {
	SendHTML(to, subject, htmlBody string) error
}

// Publisher emits pipeline events for downstream consumers.
type Publisher interface {
	PublishDigestCreated(ctx context.Context, digest domain.Digest) error
	PublishEmailSent(ctx context.Context, to string, articles int) error
}

// RunLock guards against concurrent pipeline runs across processes.
type RunLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}
