package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"event_marketplace/internal/domain"
	apperrors "event_marketplace/pkg/errors"
	"event_marketplace/pkg/logger"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	GetByID(ctx context.Context, messageID int64) (*domain.Message, error)
	ApplyEdit(ctx context.Context, messageID int64, editorID uuid.UUID, content string) (*domain.Message, error)
	ApplyDelete(ctx context.Context, messageID int64, actorID uuid.UUID) (*domain.Message, error)
	Transition(ctx context.Context, messageID int64, target domain.MessageStatus) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error)
	MarkConversationRead(ctx context.Context, userID, counterpartID uuid.UUID) (int64, error)
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

const messageColumns = `
	id, sender_id, receiver_id, kind, content, status, event_id, services, price,
	parent_id, is_edited, is_deleted, deleted_at, deleted_by, versions, created_at, updated_at
`

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (
			sender_id, receiver_id, kind, content, status, event_id, services, price, parent_id, versions
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	versions, err := json.Marshal(message.Versions)
	if err != nil {
		return fmt.Errorf("failed to encode versions: %w", err)
	}

	err = r.db.QueryRow(ctx, query,
		message.SenderID, message.ReceiverID, message.Kind, message.Content, message.Status,
		message.EventID, message.Services, message.Price, message.ParentID, versions,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create message", "error", err)
		return normalizeErr(err)
	}

	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, messageID int64) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	row := r.db.QueryRow(ctx, query, messageID)
	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		r.log.Error("Failed to get message", "error", err, "message_id", messageID)
		return nil, normalizeErr(err)
	}

	return message, nil
}

// ApplyEdit заменяет содержимое и дописывает прежнюю версию в историю
// одним UPDATE: история строится из текущей строки прямо в SQL, поэтому
// конкурентные правки не затирают друг друга — каждая добавляет ровно
// одну запись. Гонку с удалением разрешает предикат is_deleted.
func (r *messageRepository) ApplyEdit(ctx context.Context, messageID int64, editorID uuid.UUID, content string) (*domain.Message, error) {
	query := `
		UPDATE messages
		SET versions = versions || jsonb_build_object('content', content, 'edited_at', now(), 'edited_by', $2::uuid),
		    content = $3, is_edited = true, updated_at = now()
		WHERE id = $1 AND sender_id = $2 AND is_deleted = false
		RETURNING ` + messageColumns

	row := r.db.QueryRow(ctx, query, messageID, editorID, content)
	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Чужое, удаленное или исчезнувшее сообщение
			return nil, apperrors.ErrForbidden
		}
		r.log.Error("Failed to edit message", "error", err, "message_id", messageID)
		return nil, normalizeErr(err)
	}

	return message, nil
}

// ApplyDelete ставит tombstone тем же условным UPDATE: содержимое уходит
// в историю версий, запись физически не удаляется. Повторное удаление
// и удаление не отправителем не проходят предикат.
func (r *messageRepository) ApplyDelete(ctx context.Context, messageID int64, actorID uuid.UUID) (*domain.Message, error) {
	query := `
		UPDATE messages
		SET versions = versions || jsonb_build_object('content', content, 'edited_at', now(), 'edited_by', $2::uuid),
		    content = '', is_deleted = true, deleted_at = now(), deleted_by = $2, updated_at = now()
		WHERE id = $1 AND sender_id = $2 AND is_deleted = false
		RETURNING ` + messageColumns

	row := r.db.QueryRow(ctx, query, messageID, actorID)
	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrForbidden
		}
		r.log.Error("Failed to delete message", "error", err, "message_id", messageID)
		return nil, normalizeErr(err)
	}

	return message, nil
}

// Transition выполняет условный переход статуса: выигрывает ровно одна
// конкурирующая попытка, остальные получают false (0 затронутых строк).
func (r *messageRepository) Transition(ctx context.Context, messageID int64, target domain.MessageStatus) (bool, error) {
	var query string
	switch target {
	case domain.MessageStatusRead:
		// read допустим только из unread
		query = `UPDATE messages SET status = $2, updated_at = now() WHERE id = $1 AND status = 'unread'`
	case domain.MessageStatusAccepted, domain.MessageStatusRejected:
		query = `UPDATE messages SET status = $2, updated_at = now() WHERE id = $1 AND status IN ('unread', 'read')`
	default:
		return false, apperrors.ErrInvalidStateTransition
	}

	tag, err := r.db.Exec(ctx, query, messageID, target)
	if err != nil {
		r.log.Error("Failed to transition message", "error", err, "message_id", messageID, "target", target)
		return false, normalizeErr(err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE (sender_id = $1 OR receiver_id = $1) AND is_deleted = false
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list messages", "error", err, "user_id", userID)
		return nil, normalizeErr(err)
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, userID, counterpartID uuid.UUID) (int64, error) {
	query := `
		UPDATE messages
		SET status = 'read', updated_at = now()
		WHERE receiver_id = $1 AND sender_id = $2 AND status = 'unread'
		  AND kind IN ('plain', 'hire_request') AND is_deleted = false
	`

	tag, err := r.db.Exec(ctx, query, userID, counterpartID)
	if err != nil {
		r.log.Error("Failed to mark conversation read", "error", err, "user_id", userID, "counterpart_id", counterpartID)
		return 0, normalizeErr(err)
	}

	return tag.RowsAffected(), nil
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	message := &domain.Message{}
	var versions []byte

	err := row.Scan(
		&message.ID, &message.SenderID, &message.ReceiverID, &message.Kind, &message.Content,
		&message.Status, &message.EventID, &message.Services, &message.Price, &message.ParentID,
		&message.IsEdited, &message.IsDeleted, &message.DeletedAt, &message.DeletedBy,
		&versions, &message.CreatedAt, &message.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(versions) > 0 {
		if err := json.Unmarshal(versions, &message.Versions); err != nil {
			return nil, fmt.Errorf("failed to decode versions: %w", err)
		}
	}

	return message, nil
}
