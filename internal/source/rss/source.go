package rss

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"news_digest/internal/domain"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Config holds one feed's source configuration.
type Config struct {
	Name           string
	URL            string
	FetchBody      bool
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Source pulls items from a single RSS or Atom feed. When FetchBody is set,
// each article page is fetched and its main text extracted, for feeds whose
// descriptions are too thin to summarize.
type Source struct {
	httpClient     *http.Client
	name           string
	url            string
	fetchBody      bool
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// New creates a feed source.
func New(cfg Config, logger *slog.Logger) *Source {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 2 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		name:           cfg.Name,
		url:            cfg.URL,
		fetchBody:      cfg.FetchBody,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", cfg.Name),
		now:            time.Now,
	}
}

// Name returns the source identifier used in digest IDs.
func (s *Source) Name() string {
	return s.name
}

// Fetch returns feed items published within the lookback window.
func (s *Source) Fetch(ctx context.Context, hours int) ([]domain.SourceItem, error) {
	data, err := s.fetchWithRetry(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	entries, err := parseFeed(data)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	cutoff := s.now().UTC().Add(-time.Duration(hours) * time.Hour)
	items := make([]domain.SourceItem, 0, len(entries))

	for _, e := range entries {
		if e.PublishedAt == nil {
			s.logger.Debug("skipping entry without publication time", "title", e.Title)
			continue
		}
		if e.PublishedAt.Before(cutoff) {
			continue
		}

		content := e.Description
		if s.fetchBody && e.URL != "" {
			body, err := s.fetchArticleBody(ctx, e.URL)
			if err != nil {
				s.logger.Warn("article body fetch failed, keeping description",
					"url", e.URL,
					"error", err,
				)
			} else if body != "" {
				content = body
			}
		}

		items = append(items, domain.SourceItem{
			SourceType:  s.name,
			SourceID:    e.GUID,
			Title:       e.Title,
			URL:         e.URL,
			Content:     content,
			PublishedAt: e.PublishedAt,
		})
	}

	s.logger.Debug("feed fetched", "entries", len(entries), "within_window", len(items))
	return items, nil
}

func (s *Source) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		data, err = s.doRequest(ctx, url)
		if err == nil {
			return data, nil
		}

		if attempt == s.maxAttempts {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", s.maxAttempts, err)
}

func (s *Source) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (s *Source) fetchArticleBody(ctx context.Context, url string) (string, error) {
	data, err := s.fetchWithRetry(ctx, url)
	if err != nil {
		return "", err
	}
	return extractMainText(data)
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}
