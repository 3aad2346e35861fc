//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"news_digest/internal/domain"
	"news_digest/testdata/utils"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_init.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM subscribers")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM digests")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM source_items")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) sampleItem(sourceID string) domain.SourceItem {
	return domain.SourceItem{
		SourceType:  "openai",
		SourceID:    sourceID,
		Title:       "Title " + sourceID,
		URL:         "https://openai.com/" + sourceID,
		Content:     "Content " + sourceID,
		PublishedAt: utils.Ptr(time.Now().UTC().Truncate(time.Microsecond)),
	}
}

func (s *PostgresIntegrationSuite) TestItemStore_UpsertBatch_Insert() {
	store := NewItemStore(s.db)

	saved, err := store.UpsertBatch(s.ctx, []domain.SourceItem{
		s.sampleItem("1"),
		s.sampleItem("2"),
	})
	s.NoError(err)
	s.Equal(2, saved)

	var count int
	s.NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM source_items"))
	s.Equal(2, count)
}

func (s *PostgresIntegrationSuite) TestItemStore_UpsertBatch_RefreshesPayload() {
	store := NewItemStore(s.db)

	item := s.sampleItem("1")
	_, err := store.UpsertBatch(s.ctx, []domain.SourceItem{item})
	s.NoError(err)

	item.Title = "Updated Title"
	item.Content = "Updated Content"
	_, err = store.UpsertBatch(s.ctx, []domain.SourceItem{item})
	s.NoError(err)

	var count int
	s.NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM source_items"))
	s.Equal(1, count, "identity stays unique across rescrapes")

	var title string
	s.NoError(s.db.GetContext(s.ctx, &title,
		"SELECT title FROM source_items WHERE source_type = $1 AND source_id = $2", "openai", "1"))
	s.Equal("Updated Title", title)
}

func (s *PostgresIntegrationSuite) TestItemStore_ListWithContent() {
	store := NewItemStore(s.db)

	withContent := s.sampleItem("1")
	noContent := s.sampleItem("2")
	noContent.Content = "   "

	_, err := store.UpsertBatch(s.ctx, []domain.SourceItem{withContent, noContent})
	s.NoError(err)

	items, err := store.ListWithContent(s.ctx, 24)
	s.NoError(err)
	s.Len(items, 1)
	s.Equal("1", items[0].SourceID)
}

func (s *PostgresIntegrationSuite) TestDigestStore_Create_OnceOnly() {
	store := NewDigestStore(s.db)

	digest := domain.Digest{
		ID:          "openai:1",
		ArticleType: "openai",
		ArticleID:   "1",
		URL:         "https://openai.com/1",
		Title:       "First Title",
		Summary:     "First Summary",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	created, err := store.Create(s.ctx, digest)
	s.NoError(err)
	s.True(created)

	digest.Title = "Second Title"
	created, err = store.Create(s.ctx, digest)
	s.NoError(err)
	s.False(created, "existing digest is never overwritten")

	var title string
	s.NoError(s.db.GetContext(s.ctx, &title, "SELECT title FROM digests WHERE id = $1", digest.ID))
	s.Equal("First Title", title)
}

func (s *PostgresIntegrationSuite) TestDigestStore_ExistingIDs() {
	store := NewDigestStore(s.db)

	for _, id := range []string{"openai:1", "techcrunch:2"} {
		articleType, articleID := domain.SplitDigestID(id)
		_, err := store.Create(s.ctx, domain.Digest{
			ID:          id,
			ArticleType: articleType,
			ArticleID:   articleID,
			Title:       "T",
			Summary:     "S",
			CreatedAt:   time.Now().UTC(),
		})
		s.NoError(err)
	}

	ids, err := store.ExistingIDs(s.ctx)
	s.NoError(err)
	s.Len(ids, 2)
	s.Contains(ids, "openai:1")
	s.Contains(ids, "techcrunch:2")
}

func (s *PostgresIntegrationSuite) TestDigestStore_Recent_WindowAndOrder() {
	store := NewDigestStore(s.db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := []struct {
		id        string
		createdAt time.Time
	}{
		{"openai:new", now.Add(-1 * time.Hour)},
		{"openai:newer", now.Add(-10 * time.Minute)},
		{"openai:old", now.Add(-48 * time.Hour)},
	}
	for _, row := range rows {
		_, err := store.Create(s.ctx, domain.Digest{
			ID:          row.id,
			ArticleType: "openai",
			ArticleID:   row.id,
			Title:       "T",
			Summary:     "S",
			CreatedAt:   row.createdAt,
		})
		s.NoError(err)
	}

	recent, err := store.Recent(s.ctx, 24)
	s.NoError(err)
	s.Len(recent, 2)
	s.Equal("openai:newer", recent[0].ID, "newest first")
	s.Equal("openai:new", recent[1].ID)
}

func (s *PostgresIntegrationSuite) TestSubscriberStore_Lifecycle() {
	store := NewSubscriberStore(s.db)

	sub, err := store.Create(s.ctx, "reader@example.com", "Reader")
	s.NoError(err)
	s.NotEmpty(sub.ID)
	s.True(sub.Active)

	got, err := store.GetByEmail(s.ctx, "reader@example.com")
	s.NoError(err)
	s.Require().NotNil(got)
	s.Equal("Reader", got.Name)

	missing, err := store.GetByEmail(s.ctx, "nobody@example.com")
	s.NoError(err)
	s.Nil(missing)

	s.NoError(store.SetActive(s.ctx, "reader@example.com", false))
	active, err := store.ListActive(s.ctx)
	s.NoError(err)
	s.Empty(active)

	s.NoError(store.SetActive(s.ctx, "reader@example.com", true))
	count, err := store.CountActive(s.ctx)
	s.NoError(err)
	s.Equal(1, count)

	deleted, err := store.Delete(s.ctx, "reader@example.com")
	s.NoError(err)
	s.True(deleted)

	deleted, err = store.Delete(s.ctx, "reader@example.com")
	s.NoError(err)
	s.False(deleted)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	store := NewDigestStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		_, err := store.Create(ctx, domain.Digest{
			ID:          "openai:tx",
			ArticleType: "openai",
			ArticleID:   "tx",
			Title:       "T",
			Summary:     "S",
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		return context.Canceled
	})
	s.Error(err)

	var count int
	s.NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM digests WHERE id = $1", "openai:tx"))
	s.Equal(0, count)
}
