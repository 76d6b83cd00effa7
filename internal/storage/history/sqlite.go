// internal/storage/history/sqlite.go
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/cryptosignals/internal/core"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists notification history to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and migrates it.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, core.WrapError(core.ErrHistoryFailed, fmt.Errorf("open sqlite: %w", err))
	}
	// A single connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrHistoryFailed, fmt.Errorf("set WAL mode: %w", err))
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrHistoryFailed, fmt.Errorf("migrate: %w", err))
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notifications (
			id          TEXT PRIMARY KEY,
			topic       TEXT,
			title       TEXT NOT NULL,
			body        TEXT NOT NULL,
			received_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_received ON notifications(received_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Add inserts a notification.
func (s *SQLiteStore) Add(ctx context.Context, n core.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, topic, title, body, received_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Topic, n.Title, n.Body, n.ReceivedAt.UnixMilli(),
	)
	if err != nil {
		return core.WrapError(core.ErrHistoryFailed, fmt.Errorf("insert notification: %w", err))
	}
	return nil
}

// List returns notifications newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]core.Notification, error) {
	query := `SELECT id, topic, title, body, received_at FROM notifications ORDER BY received_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.WrapError(core.ErrHistoryFailed, fmt.Errorf("query notifications: %w", err))
	}
	defer rows.Close()

	var result []core.Notification
	for rows.Next() {
		var n core.Notification
		var topic sql.NullString
		var ms int64
		if err := rows.Scan(&n.ID, &topic, &n.Title, &n.Body, &ms); err != nil {
			return nil, core.WrapError(core.ErrHistoryFailed, fmt.Errorf("scan notification: %w", err))
		}
		n.Topic = topic.String
		n.ReceivedAt = time.UnixMilli(ms).UTC()
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrHistoryFailed, err)
	}
	return result, nil
}

// Count returns the number of stored notifications.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&n); err != nil {
		return 0, core.WrapError(core.ErrHistoryFailed, fmt.Errorf("count notifications: %w", err))
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
