package service

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"event_marketplace/internal/domain"
	"event_marketplace/internal/repository"
	"event_marketplace/pkg/logger"
)

type ConversationService interface {
	ListConversations(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)
	ListSentRequests(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error)
	ListReceivedRequests(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error)
}

type conversationService struct {
	messageRepo repository.MessageRepository
	log         logger.Logger
}

func NewConversationService(messageRepo repository.MessageRepository, log logger.Logger) ConversationService {
	return &conversationService{messageRepo: messageRepo, log: log}
}

// conversationKinds — в сводку переписки попадают только обычные сообщения
// и запросы на найм; остальные виды живут в списках запросов
func conversationKind(kind domain.MessageKind) bool {
	return kind == domain.MessageKindPlain || kind == domain.MessageKindHireRequest
}

func (s *conversationService) ListConversations(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	messages, err := s.messageRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byCounterpart := make(map[uuid.UUID]*domain.Conversation)
	for _, message := range messages {
		counterpartID := message.SenderID
		if counterpartID == userID {
			counterpartID = message.ReceiverID
		}

		conversation, ok := byCounterpart[counterpartID]
		if !ok {
			conversation = &domain.Conversation{CounterpartID: counterpartID}
			byCounterpart[counterpartID] = conversation
		}

		if conversationKind(message.Kind) {
			// Сообщения отсортированы по убыванию (created_at, id):
			// первое подходящее и есть последнее в переписке
			if conversation.LastMessage == nil {
				conversation.LastMessage = message
			}
			if message.ReceiverID == userID && message.Status == domain.MessageStatusUnread {
				conversation.UnreadCount++
			}
		}
	}

	conversations := make([]*domain.Conversation, 0, len(byCounterpart))
	for _, conversation := range byCounterpart {
		if conversation.LastMessage == nil {
			continue
		}
		conversations = append(conversations, conversation)
	}

	sort.Slice(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessage, conversations[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	return conversations, nil
}

func (s *conversationService) ListSentRequests(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	return s.listRequests(ctx, userID, true)
}

func (s *conversationService) ListReceivedRequests(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	return s.listRequests(ctx, userID, false)
}

func (s *conversationService) listRequests(ctx context.Context, userID uuid.UUID, sent bool) ([]*domain.Message, error) {
	messages, err := s.messageRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	requests := make([]*domain.Message, 0)
	for _, message := range messages {
		if !message.Kind.IsNegotiable() {
			continue
		}
		if sent && message.SenderID == userID {
			requests = append(requests, message)
		}
		if !sent && message.ReceiverID == userID {
			requests = append(requests, message)
		}
	}

	return requests, nil
}
