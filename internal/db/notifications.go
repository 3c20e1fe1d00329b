package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const sentNotificationsTable = "sent_notifications"

func hasSentQuery(reference string) (string, []any, error) {
	return psql.Select("1").
		Prefix("SELECT EXISTS (").
		From(sentNotificationsTable).
		Where(sq.Eq{"reference": reference}).
		Suffix(")").
		ToSql()
}

func markSentQuery(reference, notificationID string) (string, []any, error) {
	return psql.Insert(sentNotificationsTable).
		Columns("reference", "notification_id").
		Values(reference, notificationID).
		Suffix("ON CONFLICT (reference) DO NOTHING").
		ToSql()
}

// HasSent reports whether an email with this reference was already sent.
func (db *DB) HasSent(ctx context.Context, reference string) (bool, error) {
	query, args, err := hasSentQuery(reference)
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var exists bool
	if err := db.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check sent notification: %w", err)
	}
	return exists, nil
}

// MarkSent records a sent email reference with its Notify id.
func (db *DB) MarkSent(ctx context.Context, reference, notificationID string) error {
	query, args, err := markSentQuery(reference, notificationID)
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := db.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record sent notification: %w", err)
	}
	return nil
}
