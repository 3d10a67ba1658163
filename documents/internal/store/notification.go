package store

import (
	"context"
	"database/sql"
	"time"
)

// InsertNotification queues a message for a user. A nil tx uses the
// store's connection directly.
func (s *Store) InsertNotification(ctx context.Context, tx *sql.Tx, n *Notification) error {
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().UnixMilli()
	}
	const q = `INSERT INTO notifications (id, user_id, sender, message, entity_kind, entity_id, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{n.ID, n.UserID, n.Sender, n.Message, n.EntityKind, n.EntityID, n.Read, n.CreatedAt}
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, q, args...)
	} else {
		_, err = s.DB.ExecContext(ctx, q, args...)
	}
	return err
}

// ListNotifications returns a user's notifications, newest first. With
// unreadOnly, read ones are filtered out.
func (s *Store) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error) {
	q := `SELECT id, user_id, sender, message, entity_kind, entity_id, is_read, created_at
	      FROM notifications WHERE user_id = ?`
	if unreadOnly {
		q += ` AND is_read = 0`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Sender, &n.Message, &n.EntityKind, &n.EntityID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkNotificationRead marks one of the user's notifications as read.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
