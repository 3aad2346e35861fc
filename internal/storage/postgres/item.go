package postgres

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"news_digest/internal/domain"
)

// ItemStore persists raw source items in a single table keyed by
// (source_type, source_id).
type ItemStore struct {
	db *sqlx.DB
}

func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db}
}

// UpsertBatch writes items in one statement and returns how many rows were
// inserted or updated. Re-fetched items refresh their payload but keep their
// identity, so repeated scrapes stay idempotent.
func (s *ItemStore) UpsertBatch(ctx context.Context, items []domain.SourceItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	const cols = 5
	var sb strings.Builder
	sb.WriteString("INSERT INTO source_items (source_type, source_id, title, url, content, published_at) VALUES ")
	valueArgs := make([]interface{}, 0, len(items)*(cols+1))

	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($")
		sb.WriteString(itoa(i*(cols+1) + 1))
		for j := 2; j <= cols+1; j++ {
			sb.WriteString(", $")
			sb.WriteString(itoa(i*(cols+1) + j))
		}
		sb.WriteString(")")
		valueArgs = append(valueArgs,
			item.SourceType,
			item.SourceID,
			item.Title,
			item.URL,
			item.Content,
			item.PublishedAt,
		)
	}
	sb.WriteString(` ON CONFLICT (source_type, source_id) DO UPDATE SET
		title = EXCLUDED.title,
		url = EXCLUDED.url,
		content = EXCLUDED.content,
		published_at = EXCLUDED.published_at`)

	res, err := getExecutor(ctx, s.db).ExecContext(ctx, sb.String(), valueArgs...)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// ListWithContent returns items ingested within the window that carry a
// non-empty body.
func (s *ItemStore) ListWithContent(ctx context.Context, hours int) ([]domain.SourceItem, error) {
	query := `
		SELECT source_type, source_id, title, url, content, published_at, created_at
		FROM source_items
		WHERE btrim(content) <> ''
		  AND created_at >= now() - ($1 * interval '1 hour')
		ORDER BY created_at`

	var items []domain.SourceItem
	err := sqlx.SelectContext(ctx, getExecutor(ctx, s.db), &items, query, hours)
	return items, err
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + string(rune('0'+i%10))
}
