package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"event_marketplace/internal/domain"
	apperrors "event_marketplace/pkg/errors"
	"event_marketplace/pkg/logger"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, log logger.Logger) NotificationRepository {
	return &notificationRepository{db: db, log: log}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, event_id, message_id, is_read, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	metadata, err := json.Marshal(notification.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	err = r.db.QueryRow(ctx, query,
		notification.ID, notification.RecipientID, notification.SenderID, notification.Type,
		notification.Title, notification.Message, notification.EventID, notification.MessageID,
		notification.IsRead, metadata,
	).Scan(&notification.CreatedAt)

	if err != nil {
		r.log.Error("Failed to create notification", "error", err, "type", notification.Type)
		return normalizeErr(err)
	}

	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	query := `
		SELECT id, recipient_id, sender_id, type, title, message, event_id, message_id, is_read, metadata, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, recipientID)
	if err != nil {
		r.log.Error("Failed to list notifications", "error", err, "recipient_id", recipientID)
		return nil, normalizeErr(err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		notification := &domain.Notification{}
		var metadata []byte
		if err := rows.Scan(
			&notification.ID, &notification.RecipientID, &notification.SenderID, &notification.Type,
			&notification.Title, &notification.Message, &notification.EventID, &notification.MessageID,
			&notification.IsRead, &metadata, &notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &notification.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
		}
		notifications = append(notifications, notification)
	}

	return notifications, rows.Err()
}

// MarkRead отмечает уведомление прочитанным; только сам получатель
func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND recipient_id = $2`,
		notificationID, recipientID,
	)
	if err != nil {
		r.log.Error("Failed to mark notification read", "error", err, "notification_id", notificationID)
		return normalizeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE recipient_id = $1 AND is_read = false`,
		recipientID,
	)
	if err != nil {
		r.log.Error("Failed to mark all notifications read", "error", err, "recipient_id", recipientID)
		return 0, normalizeErr(err)
	}
	return tag.RowsAffected(), nil
}
