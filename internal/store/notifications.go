// internal/store/notifications.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const NotificationSmartRecommendation = "smart_recommendation"

const (
	sentNotificationsQuery = `SELECT announcement_id
		FROM notification_logs
		WHERE user_id = $1
		  AND notification_type = $2
		  AND created_at >= $3
		  AND announcement_id = ANY($4)`

	insertNotificationQuery = `INSERT INTO notification_logs (user_id, announcement_id, notification_type)
		VALUES ($1, $2, $3)`
)

// NotificationLog remembers which announcements were already pushed to a user.
type NotificationLog struct {
	db *sql.DB
}

func NewNotificationLog(db *sql.DB) *NotificationLog {
	return &NotificationLog{db: db}
}

// AlreadySent returns the subset of ids logged for the user since the cutoff.
func (l *NotificationLog) AlreadySent(ctx context.Context, userID, notificationType string, since time.Time, ids []string) (map[string]struct{}, error) {
	sent := make(map[string]struct{})
	if len(ids) == 0 {
		return sent, nil
	}

	rows, err := l.db.QueryContext(ctx, sentNotificationsQuery, userID, notificationType, since, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query notification_logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan notification_logs: %w", err)
		}
		sent[id] = struct{}{}
	}
	return sent, rows.Err()
}

// Record logs every id in one transaction.
func (l *NotificationLog) Record(ctx context.Context, userID, notificationType string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin notification_logs tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, insertNotificationQuery)
	if err != nil {
		return fmt.Errorf("prepare notification_logs insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, userID, id, notificationType); err != nil {
			return fmt.Errorf("insert notification_logs %s: %w", id, err)
		}
	}
	return tx.Commit()
}
