package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"event_marketplace/internal/domain"
	"event_marketplace/internal/repository"
	apperrors "event_marketplace/pkg/errors"
	"event_marketplace/pkg/logger"
)

type SendMessageInput struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Kind       domain.MessageKind
	Content    string
	EventID    *uuid.UUID
	Services   []string
	Price      *float64
	ParentID   *int64
}

// TransitionResult — итог перехода статуса: обновленное сообщение,
// listing (только при принятии запроса) и доменные события для диспетчера
type TransitionResult struct {
	Message *domain.Message            `json:"message"`
	Listing *domain.Listing            `json:"listing,omitempty"`
	Events  []domain.NotificationEvent `json:"-"`
}

type MessageService interface {
	Send(ctx context.Context, input SendMessageInput) (*domain.Message, []domain.NotificationEvent, error)
	GetByID(ctx context.Context, messageID int64, requesterID uuid.UUID) (*domain.Message, error)
	Edit(ctx context.Context, messageID int64, editorID uuid.UUID, content string) (*domain.Message, error)
	SoftDelete(ctx context.Context, messageID int64, actorID uuid.UUID) (*domain.Message, error)
	Transition(ctx context.Context, messageID int64, actorID uuid.UUID, target domain.MessageStatus) (*TransitionResult, error)
	MarkConversationRead(ctx context.Context, userID, counterpartID uuid.UUID) (int64, error)
}

type messageService struct {
	messageRepo    repository.MessageRepository
	engagementRepo repository.EngagementRepository
	log            logger.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, engagementRepo repository.EngagementRepository, log logger.Logger) MessageService {
	return &messageService{
		messageRepo:    messageRepo,
		engagementRepo: engagementRepo,
		log:            log,
	}
}

func (s *messageService) Send(ctx context.Context, input SendMessageInput) (*domain.Message, []domain.NotificationEvent, error) {
	input.Content = strings.TrimSpace(input.Content)

	if !input.Kind.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown message kind %q", apperrors.ErrValidation, input.Kind)
	}
	if input.Content == "" {
		return nil, nil, fmt.Errorf("%w: content is required", apperrors.ErrValidation)
	}
	if input.SenderID == input.ReceiverID {
		return nil, nil, fmt.Errorf("%w: sender and receiver must differ", apperrors.ErrValidation)
	}
	if input.Kind.RequiresEvent() {
		if input.EventID == nil {
			return nil, nil, fmt.Errorf("%w: %s requires an event", apperrors.ErrValidation, input.Kind)
		}
		if len(input.Services) == 0 {
			return nil, nil, fmt.Errorf("%w: %s requires at least one service", apperrors.ErrValidation, input.Kind)
		}
	}
	if input.Kind == domain.MessageKindServiceOffer && len(input.Services) == 0 {
		return nil, nil, fmt.Errorf("%w: %s requires at least one service", apperrors.ErrValidation, input.Kind)
	}

	message := &domain.Message{
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		Kind:       input.Kind,
		Content:    input.Content,
		Status:     domain.MessageStatusUnread,
		EventID:    input.EventID,
		Services:   input.Services,
		Price:      input.Price,
		ParentID:   input.ParentID,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, nil, err
	}

	event := domain.NotificationEvent{
		Type:       sendNotificationType(input.Kind),
		ActorID:    input.SenderID,
		Recipients: []uuid.UUID{input.ReceiverID},
		EventID:    input.EventID,
		MessageID:  &message.ID,
		Message:    message.Content,
	}

	return message, []domain.NotificationEvent{event}, nil
}

func sendNotificationType(kind domain.MessageKind) domain.NotificationType {
	switch kind {
	case domain.MessageKindHireRequest:
		return domain.NotificationHireRequest
	case domain.MessageKindServiceRequest:
		return domain.NotificationServiceRequest
	case domain.MessageKindServiceOffer:
		return domain.NotificationMessageRequest
	default:
		return domain.NotificationMessageReceived
	}
}

// GetByID возвращает сообщение вместе с историей версий.
// Полная история доступна только отправителю и получателю.
func (s *messageService) GetByID(ctx context.Context, messageID int64, requesterID uuid.UUID) (*domain.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != requesterID && message.ReceiverID != requesterID {
		return nil, apperrors.ErrForbidden
	}
	return message, nil
}

func (s *messageService) Edit(ctx context.Context, messageID int64, editorID uuid.UUID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", apperrors.ErrValidation)
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	// Редактировать может только отправитель; удаленные сообщения неизменяемы
	if message.SenderID != editorID || message.IsDeleted {
		return nil, apperrors.ErrForbidden
	}

	// Сам переход атомарен на уровне хранилища: проигравший гонку
	// с удалением получит Forbidden, история версий не теряется
	return s.messageRepo.ApplyEdit(ctx, messageID, editorID, content)
}

// SoftDelete — tombstone: содержимое заменяется пустой заглушкой,
// история версий сохраняется, запись физически не удаляется
func (s *messageService) SoftDelete(ctx context.Context, messageID int64, actorID uuid.UUID) (*domain.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if message.SenderID != actorID || message.IsDeleted {
		return nil, apperrors.ErrForbidden
	}

	return s.messageRepo.ApplyDelete(ctx, messageID, actorID)
}

func (s *messageService) Transition(ctx context.Context, messageID int64, actorID uuid.UUID, target domain.MessageStatus) (*TransitionResult, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	// Переход статуса — право получателя
	if message.ReceiverID != actorID {
		return nil, apperrors.ErrForbidden
	}
	if !message.CanTransitionTo(target) {
		return nil, apperrors.ErrInvalidStateTransition
	}

	// Принятие запроса на найм/услугу тянет за собой engagement и listing
	// в одной транзакции с переходом статуса
	if target == domain.MessageStatusAccepted && message.Kind.RequiresEvent() {
		professionalID := professionalParty(message)
		listing, err := s.engagementRepo.AcceptRequest(ctx, message, professionalID)
		if err != nil {
			return nil, err
		}
		message.Status = domain.MessageStatusAccepted

		return &TransitionResult{
			Message: message,
			Listing: listing,
			Events: []domain.NotificationEvent{{
				Type:       acceptNotificationType(message.Kind),
				ActorID:    actorID,
				Recipients: []uuid.UUID{message.SenderID},
				EventID:    message.EventID,
				MessageID:  &message.ID,
				Message:    message.Content,
				Metadata:   map[string]any{"listing_id": listing.ID.String()},
			}},
		}, nil
	}

	ok, err := s.messageRepo.Transition(ctx, messageID, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Конкурирующий переход успел раньше
		return nil, apperrors.ErrInvalidStateTransition
	}
	message.Status = target

	result := &TransitionResult{Message: message}
	switch target {
	case domain.MessageStatusAccepted:
		result.Events = []domain.NotificationEvent{{
			Type:       acceptNotificationType(message.Kind),
			ActorID:    actorID,
			Recipients: []uuid.UUID{message.SenderID},
			MessageID:  &message.ID,
			Message:    message.Content,
		}}
	case domain.MessageStatusRejected:
		result.Events = []domain.NotificationEvent{{
			Type:       rejectNotificationType(message.Kind),
			ActorID:    actorID,
			Recipients: []uuid.UUID{message.SenderID},
			EventID:    message.EventID,
			MessageID:  &message.ID,
			Message:    message.Content,
		}}
	}

	return result, nil
}

// professionalParty определяет сторону-специалиста:
// запрос на найм адресован специалисту, запрос на услугу исходит от него
func professionalParty(message *domain.Message) uuid.UUID {
	if message.Kind == domain.MessageKindHireRequest {
		return message.ReceiverID
	}
	return message.SenderID
}

func acceptNotificationType(kind domain.MessageKind) domain.NotificationType {
	if kind == domain.MessageKindHireRequest {
		return domain.NotificationHireAccepted
	}
	return domain.NotificationServiceAccepted
}

func rejectNotificationType(kind domain.MessageKind) domain.NotificationType {
	if kind == domain.MessageKindHireRequest {
		return domain.NotificationHireRejected
	}
	return domain.NotificationServiceRejected
}

func (s *messageService) MarkConversationRead(ctx context.Context, userID, counterpartID uuid.UUID) (int64, error) {
	return s.messageRepo.MarkConversationRead(ctx, userID, counterpartID)
}
