package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event_marketplace/internal/domain"
	apperrors "event_marketplace/pkg/errors"
	"event_marketplace/pkg/logger"
)

type fakeEventRepo struct {
	events map[uuid.UUID]*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*domain.Event)}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	clone := *event
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	event, ok := f.events[eventID]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *domain.Event) error {
	if _, ok := f.events[event.ID]; !ok {
		return apperrors.ErrEventNotFound
	}
	clone := *event
	clone.UpdatedAt = time.Now()
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*domain.Event, error) {
	var result []*domain.Event
	for _, event := range f.events {
		if event.OrganizerID == organizerID {
			clone := *event
			result = append(result, &clone)
		}
	}
	return result, nil
}

func newTestEventService() (EventService, *fakeEventRepo, *fakeEngagementRepo) {
	eventRepo := newFakeEventRepo()
	engagements := newFakeEngagementRepo(newFakeMessageRepo())
	svc := NewEventService(eventRepo, engagements, logger.New("error"))
	return svc, eventRepo, engagements
}

func mustCreateEvent(t *testing.T, svc EventService, organizerID uuid.UUID) *domain.Event {
	t.Helper()
	event, _, err := svc.Create(context.Background(), CreateEventInput{
		OrganizerID: organizerID,
		Title:       "Corporate Retreat",
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return event
}

func TestCreateEventValidation(t *testing.T) {
	svc, _, _ := newTestEventService()
	organizer := uuid.New()

	_, _, err := svc.Create(context.Background(), CreateEventInput{
		OrganizerID: organizer,
		Title:       "  ",
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = svc.Create(context.Background(), CreateEventInput{
		OrganizerID: organizer,
		Title:       "Backwards",
		StartDate:   time.Now().Add(time.Hour),
		EndDate:     time.Now(),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateEventStartsPlanned(t *testing.T) {
	svc, _, _ := newTestEventService()
	organizer := uuid.New()

	event, events, err := svc.Create(context.Background(), CreateEventInput{
		OrganizerID: organizer,
		Title:       "Launch Party",
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.EventStatusPlanned, event.Status)
	require.Len(t, events, 1)
	assert.Equal(t, domain.NotificationEventCreated, events[0].Type)
}

func TestUpdateEventForbiddenForStranger(t *testing.T) {
	svc, _, _ := newTestEventService()
	organizer := uuid.New()
	event := mustCreateEvent(t, svc, organizer)

	title := "Hijacked"
	_, _, err := svc.Update(context.Background(), event.ID, uuid.New(), UpdateEventInput{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateEventFansOutToParticipants(t *testing.T) {
	svc, _, _ := newTestEventService()
	organizer := uuid.New()
	professional := uuid.New()
	event := mustCreateEvent(t, svc, organizer)

	_, err := svc.Join(context.Background(), event.ID, professional, []string{"catering"})
	require.NoError(t, err)

	title := "Corporate Retreat v2"
	updated, events, err := svc.Update(context.Background(), event.ID, organizer, UpdateEventInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	// Организатор — инициатор, уведомление уходит только специалисту
	require.Len(t, events, 1)
	assert.Equal(t, domain.NotificationEventUpdated, events[0].Type)
	assert.Equal(t, []uuid.UUID{professional}, events[0].Recipients)
}

func TestCancelOnlyFromPlanned(t *testing.T) {
	svc, _, _ := newTestEventService()
	organizer := uuid.New()
	event := mustCreateEvent(t, svc, organizer)

	cancelled, _, err := svc.Cancel(context.Background(), event.ID, organizer)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusCancelled, cancelled.Status)

	// Закрытое событие нельзя ни завершить, ни отменить повторно
	_, _, err = svc.Complete(context.Background(), event.ID, organizer)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	_, _, err = svc.Cancel(context.Background(), event.ID, organizer)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
}

func TestJoinRequiresServices(t *testing.T) {
	svc, _, _ := newTestEventService()
	organizer := uuid.New()
	event := mustCreateEvent(t, svc, organizer)

	_, err := svc.Join(context.Background(), event.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestJoinDuplicateDoesNotNotifyTwice(t *testing.T) {
	svc, _, _ := newTestEventService()
	organizer := uuid.New()
	professional := uuid.New()
	event := mustCreateEvent(t, svc, organizer)

	events, err := svc.Join(context.Background(), event.ID, professional, []string{"photo"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.NotificationProfessionalJoined, events[0].Type)
	assert.Equal(t, []uuid.UUID{organizer}, events[0].Recipients)

	events, err = svc.Join(context.Background(), event.ID, professional, []string{"photo"})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestJoinClosedEventRejected(t *testing.T) {
	svc, _, _ := newTestEventService()
	organizer := uuid.New()
	event := mustCreateEvent(t, svc, organizer)

	_, _, err := svc.Cancel(context.Background(), event.ID, organizer)
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), event.ID, uuid.New(), []string{"photo"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
}

func TestLeaveEvent(t *testing.T) {
	svc, _, _ := newTestEventService()
	organizer := uuid.New()
	professional := uuid.New()
	event := mustCreateEvent(t, svc, organizer)

	// Уход без привязки
	_, err := svc.Leave(context.Background(), event.ID, professional)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Join(context.Background(), event.ID, professional, []string{"sound"})
	require.NoError(t, err)

	events, err := svc.Leave(context.Background(), event.ID, professional)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.NotificationProfessionalLeft, events[0].Type)

	engagements, err := svc.ListEngagements(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Empty(t, engagements)
}
