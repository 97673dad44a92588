package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event_marketplace/internal/domain"
	apperrors "event_marketplace/pkg/errors"
	"event_marketplace/pkg/logger"
)

type fakeNotificationRepo struct {
	created []*domain.Notification

	// failFor заставляет Create падать для конкретного получателя
	failFor map[uuid.UUID]error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{failFor: make(map[uuid.UUID]error)}
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	if err, ok := f.failFor[notification.RecipientID]; ok {
		return err
	}
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	var result []*domain.Notification
	for _, notification := range f.created {
		if notification.RecipientID == recipientID {
			result = append(result, notification)
		}
	}
	return result, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	for _, notification := range f.created {
		if notification.ID == notificationID && notification.RecipientID == recipientID {
			notification.IsRead = true
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	for _, notification := range f.created {
		if notification.RecipientID == recipientID && !notification.IsRead {
			notification.IsRead = true
			count++
		}
	}
	return count, nil
}

func TestDispatchFansOutToAllRecipients(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, logger.New("error"))

	actor := uuid.New()
	first := uuid.New()
	second := uuid.New()
	messageID := int64(42)

	svc.Dispatch(context.Background(), []domain.NotificationEvent{{
		Type:       domain.NotificationHireAccepted,
		ActorID:    actor,
		Recipients: []uuid.UUID{first, second},
		MessageID:  &messageID,
		Message:    "deal",
		Metadata:   map[string]any{"listing_id": uuid.NewString()},
	}})

	require.Len(t, repo.created, 2)
	for _, notification := range repo.created {
		assert.Equal(t, domain.NotificationHireAccepted, notification.Type)
		assert.Equal(t, "Hire Request Accepted", notification.Title)
		assert.Equal(t, "deal", notification.Message)
		require.NotNil(t, notification.SenderID)
		assert.Equal(t, actor, *notification.SenderID)
		assert.NotNil(t, notification.Metadata["listing_id"])
	}
	assert.Equal(t, first, repo.created[0].RecipientID)
	assert.Equal(t, second, repo.created[1].RecipientID)
}

func TestDispatchSkipsUnknownType(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, logger.New("error"))

	svc.Dispatch(context.Background(), []domain.NotificationEvent{{
		Type:       "smoke_signal",
		ActorID:    uuid.New(),
		Recipients: []uuid.UUID{uuid.New()},
	}})

	assert.Empty(t, repo.created)
}

func TestDispatchBestEffortOnFailure(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, logger.New("error"))

	failing := uuid.New()
	healthy := uuid.New()
	repo.failFor[failing] = errors.New("connection reset")

	// Сбой записи для одного получателя не мешает остальным
	svc.Dispatch(context.Background(), []domain.NotificationEvent{{
		Type:       domain.NotificationMessageReceived,
		ActorID:    uuid.New(),
		Recipients: []uuid.UUID{failing, healthy},
	}})

	require.Len(t, repo.created, 1)
	assert.Equal(t, healthy, repo.created[0].RecipientID)
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, logger.New("error"))

	owner := uuid.New()
	stranger := uuid.New()

	svc.Dispatch(context.Background(), []domain.NotificationEvent{{
		Type:       domain.NotificationEventUpdated,
		ActorID:    uuid.New(),
		Recipients: []uuid.UUID{owner},
	}})
	require.Len(t, repo.created, 1)
	notificationID := repo.created[0].ID

	err := svc.MarkRead(context.Background(), notificationID, stranger)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = svc.MarkRead(context.Background(), notificationID, owner)
	require.NoError(t, err)
	assert.True(t, repo.created[0].IsRead)
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, logger.New("error"))

	user := uuid.New()
	svc.Dispatch(context.Background(), []domain.NotificationEvent{
		{Type: domain.NotificationMessageReceived, ActorID: uuid.New(), Recipients: []uuid.UUID{user}},
		{Type: domain.NotificationEventCancelled, ActorID: uuid.New(), Recipients: []uuid.UUID{user}},
	})

	count, err := svc.MarkAllRead(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = svc.MarkAllRead(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
