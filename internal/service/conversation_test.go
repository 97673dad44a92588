package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event_marketplace/internal/domain"
	"event_marketplace/pkg/logger"
)

func newTestConversationService() (ConversationService, MessageService, *fakeEngagementRepo) {
	messages := newFakeMessageRepo()
	engagements := newFakeEngagementRepo(messages)
	log := logger.New("error")
	return NewConversationService(messages, log), NewMessageService(messages, engagements, log), engagements
}

func mustSend(t *testing.T, svc MessageService, input SendMessageInput) *domain.Message {
	t.Helper()
	message, _, err := svc.Send(context.Background(), input)
	require.NoError(t, err)
	return message
}

func TestListConversationsGroupsByCounterpart(t *testing.T) {
	conversations, messages, _ := newTestConversationService()
	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	mustSend(t, messages, SendMessageInput{SenderID: bob, ReceiverID: alice, Kind: domain.MessageKindPlain, Content: "hi from bob"})
	mustSend(t, messages, SendMessageInput{SenderID: bob, ReceiverID: alice, Kind: domain.MessageKindPlain, Content: "still here"})
	mustSend(t, messages, SendMessageInput{SenderID: alice, ReceiverID: carol, Kind: domain.MessageKindPlain, Content: "hi carol"})

	result, err := conversations.ListConversations(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, result, 2)

	// Переписка с carol свежее: ее сообщение отправлено последним
	assert.Equal(t, carol, result[0].CounterpartID)
	assert.Equal(t, "hi carol", result[0].LastMessage.Content)
	assert.Equal(t, 0, result[0].UnreadCount)

	assert.Equal(t, bob, result[1].CounterpartID)
	assert.Equal(t, "still here", result[1].LastMessage.Content)
	assert.Equal(t, 2, result[1].UnreadCount)
}

func TestListConversationsUnreadCountsOnlyIncoming(t *testing.T) {
	conversations, messages, _ := newTestConversationService()
	alice := uuid.New()
	bob := uuid.New()

	mustSend(t, messages, SendMessageInput{SenderID: alice, ReceiverID: bob, Kind: domain.MessageKindPlain, Content: "outgoing"})
	mustSend(t, messages, SendMessageInput{SenderID: bob, ReceiverID: alice, Kind: domain.MessageKindPlain, Content: "incoming"})

	result, err := conversations.ListConversations(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 1, result[0].UnreadCount)

	// После прочтения счетчик обнуляется
	_, err = messages.MarkConversationRead(context.Background(), alice, bob)
	require.NoError(t, err)

	result, err = conversations.ListConversations(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 0, result[0].UnreadCount)
}

func TestListConversationsExcludesOffersAndServiceRequests(t *testing.T) {
	conversations, messages, engagements := newTestConversationService()
	alice := uuid.New()
	bob := uuid.New()
	eventID := uuid.New()
	engagements.events[eventID] = &domain.Event{ID: eventID, Title: "Conference"}

	mustSend(t, messages, SendMessageInput{
		SenderID: bob, ReceiverID: alice, Kind: domain.MessageKindServiceOffer,
		Content: "my portfolio", Services: []string{"photographer"},
	})
	mustSend(t, messages, SendMessageInput{
		SenderID: bob, ReceiverID: alice, Kind: domain.MessageKindServiceRequest,
		Content: "let me work your event", EventID: &eventID, Services: []string{"catering"},
	})

	// Только офферы и запросы на услугу — переписки нет
	result, err := conversations.ListConversations(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, result)

	// Запрос на найм переписку создает
	mustSend(t, messages, SendMessageInput{
		SenderID: alice, ReceiverID: bob, Kind: domain.MessageKindHireRequest,
		Content: "come work for me", EventID: &eventID, Services: []string{"catering"},
	})

	result, err = conversations.ListConversations(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, domain.MessageKindHireRequest, result[0].LastMessage.Kind)
}

func TestListConversationsSkipsDeletedMessages(t *testing.T) {
	conversations, messages, _ := newTestConversationService()
	alice := uuid.New()
	bob := uuid.New()

	kept := mustSend(t, messages, SendMessageInput{SenderID: bob, ReceiverID: alice, Kind: domain.MessageKindPlain, Content: "keep me"})
	deleted := mustSend(t, messages, SendMessageInput{SenderID: bob, ReceiverID: alice, Kind: domain.MessageKindPlain, Content: "delete me"})

	_, err := messages.SoftDelete(context.Background(), deleted.ID, bob)
	require.NoError(t, err)

	result, err := conversations.ListConversations(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, kept.ID, result[0].LastMessage.ID)
	assert.Equal(t, 1, result[0].UnreadCount)
}

func TestRequestListsPartitionByDirection(t *testing.T) {
	conversations, messages, engagements := newTestConversationService()
	organizer := uuid.New()
	professional := uuid.New()
	eventID := uuid.New()
	engagements.events[eventID] = &domain.Event{ID: eventID, Title: "Forum"}

	sent := mustSend(t, messages, SendMessageInput{
		SenderID: organizer, ReceiverID: professional, Kind: domain.MessageKindHireRequest,
		Content: "join us", EventID: &eventID, Services: []string{"sound"},
	})
	received := mustSend(t, messages, SendMessageInput{
		SenderID: professional, ReceiverID: organizer, Kind: domain.MessageKindServiceOffer,
		Content: "hire me instead", Services: []string{"sound"},
	})
	// Обычное сообщение в списки запросов не попадает
	mustSend(t, messages, SendMessageInput{
		SenderID: organizer, ReceiverID: professional, Kind: domain.MessageKindPlain, Content: "by the way",
	})

	sentList, err := conversations.ListSentRequests(context.Background(), organizer)
	require.NoError(t, err)
	require.Len(t, sentList, 1)
	assert.Equal(t, sent.ID, sentList[0].ID)

	receivedList, err := conversations.ListReceivedRequests(context.Background(), organizer)
	require.NoError(t, err)
	require.Len(t, receivedList, 1)
	assert.Equal(t, received.ID, receivedList[0].ID)
}
