package service

import (
	"context"
	"log/slog"
	"time"

	"news_digest/internal/digest"
	"news_digest/internal/domain"
	"news_digest/internal/email"
)

// Pipeline runs the daily cycle: scrape sources, digest new items, rank the
// recent digests once, and deliver a personalized email to every active
// subscriber. Run never returns an error; failures are recorded in the
// RunResult so a scheduler can log them and try again next cycle.
type Pipeline struct {
	sources     []Source
	items       ItemStore
	digests     DigestStore
	subscribers SubscriberStore
	generator   Generator
	ranker      Ranker
	assembler   Assembler
	sender      Sender
	publisher   Publisher
	lock        RunLock
	location    *time.Location
	logger      *slog.Logger
	now         func() time.Time
}

type PipelineDeps struct {
	Sources     []Source
	Items       ItemStore
	Digests     DigestStore
	Subscribers SubscriberStore
	Generator   Generator
	Ranker      Ranker
	Assembler   Assembler
	Sender      Sender
	Publisher   Publisher
	Lock        RunLock
	Location    *time.Location
}

func NewPipeline(deps PipelineDeps, logger *slog.Logger) *Pipeline {
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	return &Pipeline{
		sources:     deps.Sources,
		items:       deps.Items,
		digests:     deps.Digests,
		subscribers: deps.Subscribers,
		generator:   deps.Generator,
		ranker:      deps.Ranker,
		assembler:   deps.Assembler,
		sender:      deps.Sender,
		publisher:   deps.Publisher,
		lock:        deps.Lock,
		location:    location,
		logger:      logger.With("component", "pipeline"),
		now:         time.Now,
	}
}

// Run executes one full pipeline pass.
func (p *Pipeline) Run(ctx context.Context, hours, topN int) domain.RunResult {
	start := p.now()
	result := domain.RunResult{
		StartTime: start,
		Scraping:  make(map[string]domain.SourceStats),
	}

	defer func() {
		end := p.now()
		result.EndTime = end
		result.Duration = end.Sub(start)
	}()

	if p.lock != nil {
		acquired, err := p.lock.Acquire(ctx)
		if err != nil {
			p.logger.Error("run lock check failed", "error", err)
			result.Error = "run lock unavailable: " + err.Error()
			return result
		}
		if !acquired {
			p.logger.Warn("another pipeline run is in progress, skipping")
			result.Error = "another run is in progress"
			return result
		}
		defer func() {
			if err := p.lock.Release(ctx); err != nil {
				p.logger.Error("run lock release failed", "error", err)
			}
		}()
	}

	p.logger.Info("pipeline run started", "hours", hours, "top_n", topN)

	result.Scraping = p.scrape(ctx, hours)
	result.Digests = p.processDigests(ctx, hours)
	result.Email = p.sendEmails(ctx, hours, topN)
	result.Success = result.Email.Success

	p.logger.Info("pipeline run finished",
		"success", result.Success,
		"digests_processed", result.Digests.Processed,
		"emails_sent", result.Email.Sent,
	)
	return result
}

// scrape fetches every source and persists what came back. One broken source
// never stops the others.
func (p *Pipeline) scrape(ctx context.Context, hours int) map[string]domain.SourceStats {
	stats := make(map[string]domain.SourceStats, len(p.sources))

	for _, source := range p.sources {
		name := source.Name()
		items, err := source.Fetch(ctx, hours)
		if err != nil {
			p.logger.Error("source fetch failed", "source", name, "error", err)
			stats[name] = domain.SourceStats{Failed: true}
			continue
		}

		saved := 0
		if len(items) > 0 {
			saved, err = p.items.UpsertBatch(ctx, items)
			if err != nil {
				p.logger.Error("source save failed", "source", name, "error", err)
				stats[name] = domain.SourceStats{Fetched: len(items), Failed: true}
				continue
			}
		}

		p.logger.Info("source scraped", "source", name, "fetched", len(items), "saved", saved)
		stats[name] = domain.SourceStats{Fetched: len(items), Saved: saved}
	}
	return stats
}

// processDigests generates a digest for every item that still lacks one.
func (p *Pipeline) processDigests(ctx context.Context, hours int) domain.DigestStats {
	items, err := p.items.ListWithContent(ctx, hours)
	if err != nil {
		p.logger.Error("listing items failed", "error", err)
		return domain.DigestStats{}
	}

	existing, err := p.digests.ExistingIDs(ctx)
	if err != nil {
		p.logger.Error("listing existing digests failed", "error", err)
		return domain.DigestStats{}
	}

	pending := digest.Pending(items, existing)
	stats := domain.DigestStats{Total: len(pending)}
	p.logger.Info("digest stage started", "pending", len(pending))

	for _, item := range pending {
		d, err := p.generator.Generate(ctx, item)
		if err != nil {
			p.logger.Warn("digest generation failed", "item", item.Key(), "error", err)
			stats.Failed++
			continue
		}

		created, err := p.digests.Create(ctx, *d)
		if err != nil {
			p.logger.Error("digest save failed", "digest", d.ID, "error", err)
			stats.Failed++
			continue
		}
		if !created {
			continue
		}

		stats.Processed++
		if p.publisher != nil {
			if err := p.publisher.PublishDigestCreated(ctx, *d); err != nil {
				p.logger.Warn("digest event publish failed", "digest", d.ID, "error", err)
			}
		}
	}
	return stats
}

// sendEmails ranks recent digests once and reuses the ordering for every
// subscriber; only the introduction is generated per recipient.
func (p *Pipeline) sendEmails(ctx context.Context, hours, topN int) domain.EmailStats {
	subscribers, err := p.subscribers.ListActive(ctx)
	if err != nil {
		p.logger.Error("listing subscribers failed", "error", err)
		return domain.EmailStats{Error: err.Error()}
	}
	if len(subscribers) == 0 {
		p.logger.Warn("no active subscribers")
		return domain.EmailStats{Error: "No active subscribers"}
	}

	digests, err := p.digests.Recent(ctx, hours)
	if err != nil {
		p.logger.Error("listing recent digests failed", "error", err)
		return domain.EmailStats{Error: err.Error()}
	}
	if len(digests) == 0 {
		p.logger.Warn("no digests in ranking window", "hours", hours)
		return domain.EmailStats{Error: "No digests available"}
	}

	ranked := p.ranker.Rank(ctx, digests)
	if len(ranked) == 0 {
		p.logger.Error("ranking produced no articles")
		return domain.EmailStats{Error: "Failed to rank articles"}
	}

	articles := joinArticles(ranked, digests)
	if len(articles) > topN {
		articles = articles[:topN]
	}

	subject := p.assembler.Subject()
	stats := domain.EmailStats{Subject: subject, Articles: len(articles)}

	for _, sub := range subscribers {
		payload := p.assembler.BuildDigest(ctx, sub.DisplayName(), articles, len(ranked), topN)

		body, err := email.RenderDigestHTML(payload, p.now(), p.location)
		if err != nil {
			p.logger.Error("rendering digest failed", "subscriber", sub.Email, "error", err)
			stats.Failed++
			continue
		}

		if err := p.sender.SendHTML(sub.Email, subject, body); err != nil {
			p.logger.Error("sending digest failed", "subscriber", sub.Email, "error", err)
			stats.Failed++
			continue
		}

		stats.Sent++
		if p.publisher != nil {
			if err := p.publisher.PublishEmailSent(ctx, sub.Email, len(articles)); err != nil {
				p.logger.Warn("email event publish failed", "subscriber", sub.Email, "error", err)
			}
		}
	}

	if stats.Sent == 0 {
		stats.Error = "Failed to send emails to any subscribers"
		return stats
	}

	stats.Success = true
	p.logger.Info("digest delivered", "sent", stats.Sent, "failed", stats.Failed, "total", len(subscribers))
	return stats
}

// joinArticles merges the ranking with the digest content it refers to,
// preserving rank order.
func joinArticles(ranked []domain.RankedDigest, digests []domain.Digest) []domain.RankedArticle {
	byID := make(map[string]domain.Digest, len(digests))
	for _, d := range digests {
		byID[d.ID] = d
	}

	out := make([]domain.RankedArticle, 0, len(ranked))
	for _, r := range ranked {
		d := byID[r.DigestID]
		out = append(out, domain.RankedArticle{
			DigestID:       r.DigestID,
			Rank:           r.Rank,
			RelevanceScore: r.RelevanceScore,
			Reasoning:      r.Reasoning,
			Title:          d.Title,
			Summary:        d.Summary,
			URL:            d.URL,
			ArticleType:    d.ArticleType,
		})
	}
	return out
}
