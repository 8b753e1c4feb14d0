// Package sqlite provides SQLite-backed notification journal persistence.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/listmirror/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/listmirror/internal/storage"
	"github.com/louisbranch/listmirror/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed notification journal persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a journal SQLite store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendNotification persists one lifecycle notification.
func (s *Store) AppendNotification(ctx context.Context, rec storage.NotificationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	rec.Type = strings.TrimSpace(rec.Type)
	if rec.Type == "" {
		return fmt.Errorf("notification type is required")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO notifications (
	type,
	record_id,
	timestamp,
	payload_json
) VALUES (?, ?, ?, ?)
`,
		rec.Type,
		rec.RecordID,
		rec.Timestamp.UTC().UnixMilli(),
		rec.PayloadJSON,
	)
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

// ListNotifications lists newest-first journal entries.
func (s *Store) ListNotifications(ctx context.Context, limit int) ([]storage.NotificationRecord, error) {
	return s.list(ctx, "", limit)
}

// ListNotificationsByRecord lists newest-first journal entries for one record.
func (s *Store) ListNotificationsByRecord(ctx context.Context, recordID string, limit int) ([]storage.NotificationRecord, error) {
	if strings.TrimSpace(recordID) == "" {
		return nil, fmt.Errorf("record id is required")
	}
	return s.list(ctx, recordID, limit)
}

func (s *Store) list(ctx context.Context, recordID string, limit int) ([]storage.NotificationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	query := `
SELECT seq, type, record_id, timestamp, payload_json
FROM notifications
`
	args := []any{}
	if recordID != "" {
		query += "WHERE record_id = ?\n"
		args = append(args, recordID)
	}
	query += "ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var records []storage.NotificationRecord
	for rows.Next() {
		var rec storage.NotificationRecord
		var millis int64
		if err := rows.Scan(&rec.Seq, &rec.Type, &rec.RecordID, &millis, &rec.PayloadJSON); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		rec.Timestamp = time.UnixMilli(millis).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return records, nil
}
