package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"event_marketplace/internal/domain"
	"event_marketplace/internal/repository"
	apperrors "event_marketplace/pkg/errors"
	"event_marketplace/pkg/logger"
)

type NotificationService interface {
	Dispatch(ctx context.Context, events []domain.NotificationEvent)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	log              logger.Logger
}

func NewNotificationService(notificationRepo repository.NotificationRepository, log logger.Logger) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, log: log}
}

// Dispatch раскладывает доменные события в записи Notification для каждого
// получателя. Доставка best-effort: сбой записи логируется и не влияет
// ни на остальные уведомления, ни на вызвавшую операцию.
func (s *notificationService) Dispatch(ctx context.Context, events []domain.NotificationEvent) {
	for _, event := range events {
		if !event.Type.Valid() {
			s.log.Warn("Skipping notification with unknown type", "type", event.Type)
			continue
		}

		for _, recipientID := range event.Recipients {
			actorID := event.ActorID
			notification := &domain.Notification{
				ID:          uuid.New(),
				RecipientID: recipientID,
				SenderID:    &actorID,
				Type:        event.Type,
				Title:       event.Type.Title(),
				Message:     event.Message,
				EventID:     event.EventID,
				MessageID:   event.MessageID,
				Metadata:    event.Metadata,
			}

			if err := s.notificationRepo.Create(ctx, notification); err != nil {
				s.log.Error("Notification dispatch failed",
					"error", fmt.Errorf("%w: %v", apperrors.ErrDispatchFailure, err),
					"type", event.Type, "recipient_id", recipientID)
			}
		}
	}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	return s.notificationRepo.ListByRecipient(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
