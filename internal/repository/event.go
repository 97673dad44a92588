package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"event_marketplace/internal/domain"
	apperrors "event_marketplace/pkg/errors"
	"event_marketplace/pkg/logger"
)

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*domain.Event, error)
}

type eventRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewEventRepository(db *pgxpool.Pool, log logger.Logger) EventRepository {
	return &eventRepository{db: db, log: log}
}

const eventColumns = `id, organizer_id, title, description, budget, start_date, end_date, status, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, organizer_id, title, description, budget, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		event.ID, event.OrganizerID, event.Title, event.Description,
		event.Budget, event.StartDate, event.EndDate, event.Status,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create event", "error", err)
		return normalizeErr(err)
	}

	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event := &domain.Event{}
	err := r.db.QueryRow(ctx, query, eventID).Scan(
		&event.ID, &event.OrganizerID, &event.Title, &event.Description, &event.Budget,
		&event.StartDate, &event.EndDate, &event.Status, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		r.log.Error("Failed to get event", "error", err, "event_id", eventID)
		return nil, normalizeErr(err)
	}

	return event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, budget = $4, start_date = $5, end_date = $6, status = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		event.ID, event.Title, event.Description, event.Budget,
		event.StartDate, event.EndDate, event.Status,
	).Scan(&event.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrEventNotFound
		}
		r.log.Error("Failed to update event", "error", err, "event_id", event.ID)
		return normalizeErr(err)
	}

	return nil
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = $1 ORDER BY start_date`

	rows, err := r.db.Query(ctx, query, organizerID)
	if err != nil {
		r.log.Error("Failed to list events", "error", err, "organizer_id", organizerID)
		return nil, normalizeErr(err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event := &domain.Event{}
		if err := rows.Scan(
			&event.ID, &event.OrganizerID, &event.Title, &event.Description, &event.Budget,
			&event.StartDate, &event.EndDate, &event.Status, &event.CreatedAt, &event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
