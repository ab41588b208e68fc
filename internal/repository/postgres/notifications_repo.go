package postgres

import (
	"context"

	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationsRepo struct{ pool *pgxpool.Pool }

const notificationColumns = `id, recipient_id, title, message, type, category, priority, read,
  related_id, related_model, created_at, updated_at`

func scanNotification(row pgx.Row) (models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Type, &n.Category, &n.Priority, &n.Read,
		&n.RelatedID, &n.RelatedModel, &n.CreatedAt, &n.UpdatedAt)
	return n, mapErr(err)
}

func (r *notificationsRepo) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return scanNotification(r.pool.QueryRow(ctx, `
INSERT INTO notifications (id, recipient_id, title, message, type, category, priority, read, related_id, related_model)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING `+notificationColumns,
		n.ID, n.RecipientID, n.Title, n.Message, n.Type, n.Category, n.Priority, n.Read, n.RelatedID, n.RelatedModel,
	))
}

func (r *notificationsRepo) GetByID(ctx context.Context, id string) (models.Notification, error) {
	return scanNotification(r.pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id=$1`, id))
}

func (r *notificationsRepo) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	const where = ` FROM notifications WHERE recipient_id=$1 AND (NOT $2 OR NOT read)`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*)`+where, recipientID, unreadOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+notificationColumns+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		recipientID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (r *notificationsRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE recipient_id=$1 AND NOT read`, recipientID).Scan(&n)
	return n, err
}

func (r *notificationsRepo) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read=true, updated_at=now() WHERE id=$1 AND recipient_id=$2`, id, recipientID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *notificationsRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read=true, updated_at=now() WHERE recipient_id=$1 AND NOT read`, recipientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationsRepo) Delete(ctx context.Context, id, recipientID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id=$1 AND recipient_id=$2`, id, recipientID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *notificationsRepo) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE recipient_id=$1`, recipientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
