package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"news_digest/internal/domain"
)

// SubscriberStore manages the recipient list.
type SubscriberStore struct {
	db *sqlx.DB
}

func NewSubscriberStore(db *sqlx.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

// GetByEmail returns the subscriber for an address, or nil when none exists.
func (s *SubscriberStore) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := sqlx.GetContext(ctx, getExecutor(ctx, s.db), &sub,
		"SELECT id, email, name, active, created_at FROM subscribers WHERE email = $1",
		email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create registers a new active subscriber.
func (s *SubscriberStore) Create(ctx context.Context, email, name string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := sqlx.GetContext(ctx, getExecutor(ctx, s.db), &sub, `
		INSERT INTO subscribers (id, email, name, active)
		VALUES (gen_random_uuid(), $1, $2, true)
		RETURNING id, email, name, active, created_at`,
		email, name,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// SetActive flips a subscription on or off.
func (s *SubscriberStore) SetActive(ctx context.Context, email string, active bool) error {
	_, err := getExecutor(ctx, s.db).ExecContext(ctx,
		"UPDATE subscribers SET active = $1 WHERE email = $2",
		active, email,
	)
	return err
}

// Delete removes a subscriber entirely and reports whether a row existed.
func (s *SubscriberStore) Delete(ctx context.Context, email string) (bool, error) {
	res, err := getExecutor(ctx, s.db).ExecContext(ctx,
		"DELETE FROM subscribers WHERE email = $1",
		email,
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

// ListActive returns every subscriber who should receive the daily digest.
func (s *SubscriberStore) ListActive(ctx context.Context) ([]domain.Subscriber, error) {
	var subs []domain.Subscriber
	err := sqlx.SelectContext(ctx, getExecutor(ctx, s.db), &subs,
		"SELECT id, email, name, active, created_at FROM subscribers WHERE active ORDER BY created_at",
	)
	return subs, err
}

// CountActive returns the number of active subscribers.
func (s *SubscriberStore) CountActive(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, getExecutor(ctx, s.db), &count,
		"SELECT count(*) FROM subscribers WHERE active",
	)
	return count, err
}
