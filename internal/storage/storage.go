// Package storage defines persistence interfaces for the notification
// journal.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// NotificationRecord is one journaled lifecycle notification.
type NotificationRecord struct {
	Seq         int64
	Type        string
	RecordID    string
	Timestamp   time.Time
	PayloadJSON []byte
}

// JournalStore persists lifecycle notifications.
type JournalStore interface {
	AppendNotification(ctx context.Context, rec NotificationRecord) error
	ListNotifications(ctx context.Context, limit int) ([]NotificationRecord, error)
	ListNotificationsByRecord(ctx context.Context, recordID string, limit int) ([]NotificationRecord, error)
}
