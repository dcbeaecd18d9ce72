// Package store persists notification-widget state (emitted alerts and
// their read flags) in a local sqlite file so the bell widget survives
// restarts. This is client-side UI state only; inventory data lives behind
// the upstream API.
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"pharmafront/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS alerts (
	id         TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	delta      INTEGER NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at DESC);
`

type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the sqlite file and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open alert store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply alert store schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) SaveAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save alerts: %w", err)
	}
	defer tx.Rollback()

	for _, alert := range alerts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO alerts (id, category, delta, message, created_at, read)
			VALUES (?, ?, ?, ?, ?, 0)`,
			alert.ID, alert.Category, alert.Delta, alert.Message, alert.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert alert %s: %w", alert.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListAlerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	var alerts []domain.Alert
	err := s.db.SelectContext(ctx, &alerts, `
		SELECT id, category, delta, message, created_at, read
		FROM alerts
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

func (s *Store) MarkAllRead(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE alerts SET read = 1 WHERE read = 0`)
	if err != nil {
		return 0, fmt.Errorf("mark alerts read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark alerts read: %w", err)
	}
	return affected, nil
}

func (s *Store) UnreadCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM alerts WHERE read = 0`); err != nil {
		return 0, fmt.Errorf("count unread alerts: %w", err)
	}
	return count, nil
}

// Prune drops read alerts beyond keep rows, oldest first.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		keep = 500
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM alerts WHERE read = 1 AND id NOT IN (
			SELECT id FROM alerts ORDER BY created_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune alerts: %w", err)
	}
	return nil
}
