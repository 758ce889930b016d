package notifications

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"hrperf/internal/domain/apperr"
)

func (s *Store) CreateNotification(ctx context.Context, n Notification) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (id, recipient_id, type, title, body, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, n.ID, n.RecipientID, n.Kind, n.Title, n.Body, n.CreatedAt)
	return errors.Wrap(err, "insert notification")
}

func (s *Store) RecipientEmail(ctx context.Context, recipientID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, "SELECT email FROM actors WHERE id = $1 AND active", recipientID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "load recipient email")
	}
	return email, nil
}

func (s *Store) ListNotifications(ctx context.Context, recipientID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, recipient_id, type, title, body, read_at, created_at
    FROM notifications
    WHERE recipient_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, recipientID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	defer rows.Close()

	out := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan notification")
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountNotifications(ctx context.Context, recipientID string) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE recipient_id = $1", recipientID).Scan(&total); err != nil {
		return 0, errors.Wrap(err, "count notifications")
	}
	return total, nil
}

func (s *Store) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE recipient_id = $1 AND id = $2
  `, recipientID, notificationID)
	if err != nil {
		return errors.Wrap(err, "mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification", notificationID)
	}
	return nil
}

func (s *Store) PurgeReadNotifications(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM notifications WHERE read_at IS NOT NULL AND read_at < $1", before)
	if err != nil {
		return 0, errors.Wrap(err, "purge notifications")
	}
	return tag.RowsAffected(), nil
}
