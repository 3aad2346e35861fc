package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"news_digest/internal/domain"
)

// DigestStore persists generated digests. A digest is written once per
// identity and never updated; the model is not re-consulted for content that
// already has a summary.
type DigestStore struct {
	db *sqlx.DB
}

func NewDigestStore(db *sqlx.DB) *DigestStore {
	return &DigestStore{db: db}
}

// Create inserts a digest and reports whether a new row was written. An
// existing id is left untouched.
func (s *DigestStore) Create(ctx context.Context, digest domain.Digest) (bool, error) {
	query := `
		INSERT INTO digests (id, article_type, article_id, url, title, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	res, err := getExecutor(ctx, s.db).ExecContext(ctx, query,
		digest.ID,
		digest.ArticleType,
		digest.ArticleID,
		digest.URL,
		digest.Title,
		digest.Summary,
		digest.CreatedAt,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ExistingIDs returns the identity set of every stored digest.
func (s *DigestStore) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if err := sqlx.SelectContext(ctx, getExecutor(ctx, s.db), &ids, "SELECT id FROM digests"); err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Recent returns digests created within the lookback window, newest first.
func (s *DigestStore) Recent(ctx context.Context, hours int) ([]domain.Digest, error) {
	query := `
		SELECT id, article_type, article_id, url, title, summary, created_at
		FROM digests
		WHERE created_at >= now() - ($1 * interval '1 hour')
		ORDER BY created_at DESC`

	var digests []domain.Digest
	err := sqlx.SelectContext(ctx, getExecutor(ctx, s.db), &digests, query, hours)
	return digests, err
}
