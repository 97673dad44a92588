package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"event_marketplace/internal/domain"
	"event_marketplace/internal/repository"
	apperrors "event_marketplace/pkg/errors"
	"event_marketplace/pkg/logger"
)

type CreateEventInput struct {
	OrganizerID uuid.UUID
	Title       string
	Description string
	Budget      *float64
	StartDate   time.Time
	EndDate     time.Time
}

type UpdateEventInput struct {
	Title       *string
	Description *string
	Budget      *float64
	StartDate   *time.Time
	EndDate     *time.Time
}

type EventService interface {
	Create(ctx context.Context, input CreateEventInput) (*domain.Event, []domain.NotificationEvent, error)
	GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*domain.Event, error)
	Update(ctx context.Context, eventID, organizerID uuid.UUID, input UpdateEventInput) (*domain.Event, []domain.NotificationEvent, error)
	Cancel(ctx context.Context, eventID, organizerID uuid.UUID) (*domain.Event, []domain.NotificationEvent, error)
	Complete(ctx context.Context, eventID, organizerID uuid.UUID) (*domain.Event, []domain.NotificationEvent, error)
	Join(ctx context.Context, eventID, professionalID uuid.UUID, services []string) ([]domain.NotificationEvent, error)
	Leave(ctx context.Context, eventID, professionalID uuid.UUID) ([]domain.NotificationEvent, error)
	ListEngagements(ctx context.Context, eventID uuid.UUID) ([]*domain.Engagement, error)
	ListListings(ctx context.Context, professionalID uuid.UUID) ([]*domain.Listing, error)
}

type eventService struct {
	eventRepo      repository.EventRepository
	engagementRepo repository.EngagementRepository
	log            logger.Logger
}

func NewEventService(eventRepo repository.EventRepository, engagementRepo repository.EngagementRepository, log logger.Logger) EventService {
	return &eventService{
		eventRepo:      eventRepo,
		engagementRepo: engagementRepo,
		log:            log,
	}
}

func (s *eventService) Create(ctx context.Context, input CreateEventInput) (*domain.Event, []domain.NotificationEvent, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, nil, fmt.Errorf("%w: end date before start date", apperrors.ErrValidation)
	}

	event := &domain.Event{
		ID:          uuid.New(),
		OrganizerID: input.OrganizerID,
		Title:       input.Title,
		Description: input.Description,
		Budget:      input.Budget,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      domain.EventStatusPlanned,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, nil, err
	}

	events := []domain.NotificationEvent{{
		Type:       domain.NotificationEventCreated,
		ActorID:    input.OrganizerID,
		Recipients: []uuid.UUID{input.OrganizerID},
		EventID:    &event.ID,
		Message:    event.Title,
	}}

	return event, events, nil
}

func (s *eventService) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return s.eventRepo.GetByID(ctx, eventID)
}

func (s *eventService) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*domain.Event, error) {
	return s.eventRepo.ListByOrganizer(ctx, organizerID)
}

func (s *eventService) Update(ctx context.Context, eventID, organizerID uuid.UUID, input UpdateEventInput) (*domain.Event, []domain.NotificationEvent, error) {
	event, err := s.ownedEvent(ctx, eventID, organizerID)
	if err != nil {
		return nil, nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
		}
		event.Title = title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Budget != nil {
		event.Budget = input.Budget
	}
	if input.StartDate != nil {
		event.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		event.EndDate = *input.EndDate
	}
	if event.EndDate.Before(event.StartDate) {
		return nil, nil, fmt.Errorf("%w: end date before start date", apperrors.ErrValidation)
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, nil, err
	}

	events, err := s.fanOutToParticipants(ctx, event, organizerID, domain.NotificationEventUpdated)
	if err != nil {
		return nil, nil, err
	}

	return event, events, nil
}

func (s *eventService) Cancel(ctx context.Context, eventID, organizerID uuid.UUID) (*domain.Event, []domain.NotificationEvent, error) {
	return s.close(ctx, eventID, organizerID, domain.EventStatusCancelled, domain.NotificationEventCancelled)
}

func (s *eventService) Complete(ctx context.Context, eventID, organizerID uuid.UUID) (*domain.Event, []domain.NotificationEvent, error) {
	return s.close(ctx, eventID, organizerID, domain.EventStatusCompleted, domain.NotificationEventCompleted)
}

func (s *eventService) close(ctx context.Context, eventID, organizerID uuid.UUID, status domain.EventStatus, notificationType domain.NotificationType) (*domain.Event, []domain.NotificationEvent, error) {
	event, err := s.ownedEvent(ctx, eventID, organizerID)
	if err != nil {
		return nil, nil, err
	}

	if event.Status != domain.EventStatusPlanned {
		return nil, nil, apperrors.ErrInvalidStateTransition
	}

	event.Status = status
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, nil, err
	}

	events, err := s.fanOutToParticipants(ctx, event, organizerID, notificationType)
	if err != nil {
		return nil, nil, err
	}

	return event, events, nil
}

func (s *eventService) Join(ctx context.Context, eventID, professionalID uuid.UUID, services []string) ([]domain.NotificationEvent, error) {
	if len(services) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", apperrors.ErrValidation)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusPlanned {
		return nil, apperrors.ErrInvalidStateTransition
	}

	added, err := s.engagementRepo.Add(ctx, &domain.Engagement{
		EventID:        eventID,
		ProfessionalID: professionalID,
		Services:       services,
		Status:         domain.EngagementStatusPending,
	})
	if err != nil {
		return nil, err
	}
	if !added {
		// Уже привязан к событию, уведомление не дублируем
		return nil, nil
	}

	return []domain.NotificationEvent{{
		Type:       domain.NotificationProfessionalJoined,
		ActorID:    professionalID,
		Recipients: []uuid.UUID{event.OrganizerID},
		EventID:    &eventID,
		Message:    event.Title,
		Metadata:   map[string]any{"services": services},
	}}, nil
}

func (s *eventService) Leave(ctx context.Context, eventID, professionalID uuid.UUID) ([]domain.NotificationEvent, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	removed, err := s.engagementRepo.Remove(ctx, eventID, professionalID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, apperrors.ErrNotFound
	}

	return []domain.NotificationEvent{{
		Type:       domain.NotificationProfessionalLeft,
		ActorID:    professionalID,
		Recipients: []uuid.UUID{event.OrganizerID},
		EventID:    &eventID,
		Message:    event.Title,
	}}, nil
}

func (s *eventService) ListEngagements(ctx context.Context, eventID uuid.UUID) ([]*domain.Engagement, error) {
	return s.engagementRepo.ListByEvent(ctx, eventID)
}

func (s *eventService) ListListings(ctx context.Context, professionalID uuid.UUID) ([]*domain.Listing, error) {
	return s.engagementRepo.ListListingsByProfessional(ctx, professionalID)
}

func (s *eventService) ownedEvent(ctx context.Context, eventID, organizerID uuid.UUID) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != organizerID {
		return nil, apperrors.ErrForbidden
	}
	return event, nil
}

// fanOutToParticipants собирает получателей: все привязанные специалисты плюс организатор
func (s *eventService) fanOutToParticipants(ctx context.Context, event *domain.Event, actorID uuid.UUID, notificationType domain.NotificationType) ([]domain.NotificationEvent, error) {
	engagements, err := s.engagementRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	recipients := make([]uuid.UUID, 0, len(engagements)+1)
	for _, engagement := range engagements {
		if engagement.ProfessionalID != actorID {
			recipients = append(recipients, engagement.ProfessionalID)
		}
	}
	if event.OrganizerID != actorID {
		recipients = append(recipients, event.OrganizerID)
	}
	if len(recipients) == 0 {
		return nil, nil
	}

	return []domain.NotificationEvent{{
		Type:       notificationType,
		ActorID:    actorID,
		Recipients: recipients,
		EventID:    &event.ID,
		Message:    event.Title,
	}}, nil
}
