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

type EngagementRepository interface {
	AcceptRequest(ctx context.Context, message *domain.Message, professionalID uuid.UUID) (*domain.Listing, error)
	Add(ctx context.Context, engagement *domain.Engagement) (bool, error)
	Remove(ctx context.Context, eventID, professionalID uuid.UUID) (bool, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Engagement, error)
	ListListingsByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*domain.Listing, error)
}

type engagementRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewEngagementRepository(db *pgxpool.Pool, log logger.Logger) EngagementRepository {
	return &engagementRepository{db: db, log: log}
}

// AcceptRequest применяет принятие запроса как единую транзакцию:
// переход статуса сообщения, запись engagement и создание listing.
// Частичное применение недопустимо: при любой ошибке весь блок откатывается,
// статус сообщения остается прежним.
func (r *engagementRepository) AcceptRequest(ctx context.Context, message *domain.Message, professionalID uuid.UUID) (*domain.Listing, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		r.log.Error("Failed to begin transaction", "error", err)
		return nil, normalizeErr(err)
	}
	defer tx.Rollback(ctx)

	// Условный переход статуса: при гонке выигрывает ровно одна попытка
	tag, err := tx.Exec(ctx,
		`UPDATE messages SET status = 'accepted', updated_at = now() WHERE id = $1 AND status IN ('unread', 'read')`,
		message.ID,
	)
	if err != nil {
		r.log.Error("Failed to transition message", "error", err, "message_id", message.ID)
		return nil, normalizeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrInvalidStateTransition
	}

	// Блокировка строки события сериализует проверку уникальности (event, professional)
	event := &domain.Event{}
	err = tx.QueryRow(ctx,
		`SELECT id, organizer_id, title, budget, start_date, end_date FROM events WHERE id = $1 FOR UPDATE`,
		message.EventID,
	).Scan(&event.ID, &event.OrganizerID, &event.Title, &event.Budget, &event.StartDate, &event.EndDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		r.log.Error("Failed to lock event", "error", err, "event_id", message.EventID)
		return nil, normalizeErr(err)
	}

	// Повторное принятие после ретрая не плодит дубликатов engagement
	_, err = tx.Exec(ctx,
		`INSERT INTO engagements (event_id, professional_id, services, status)
		 VALUES ($1, $2, $3, 'accepted')
		 ON CONFLICT (event_id, professional_id) DO UPDATE SET status = 'accepted', services = EXCLUDED.services`,
		event.ID, professionalID, message.Services,
	)
	if err != nil {
		r.log.Error("Failed to upsert engagement", "error", err, "event_id", event.ID, "professional_id", professionalID)
		return nil, normalizeErr(err)
	}

	// Цена listing: из сообщения, иначе из бюджета события
	price := 0.0
	if message.Price != nil {
		price = *message.Price
	} else if event.Budget != nil {
		price = *event.Budget
	}

	listing := &domain.Listing{
		ID:             uuid.New(),
		ProfessionalID: professionalID,
		EventID:        event.ID,
		Services:       message.Services,
		Title:          event.Title,
		Price:          price,
		StartDate:      event.StartDate,
		EndDate:        event.EndDate,
		Status:         domain.ListingStatusActive,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO listings (id, professional_id, event_id, services, title, price, start_date, end_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		listing.ID, listing.ProfessionalID, listing.EventID, listing.Services,
		listing.Title, listing.Price, listing.StartDate, listing.EndDate, listing.Status,
	).Scan(&listing.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create listing", "error", err, "event_id", event.ID)
		return nil, normalizeErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit acceptance", "error", err, "message_id", message.ID)
		return nil, normalizeErr(err)
	}

	return listing, nil
}

func (r *engagementRepository) Add(ctx context.Context, engagement *domain.Engagement) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO engagements (event_id, professional_id, services, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (event_id, professional_id) DO NOTHING`,
		engagement.EventID, engagement.ProfessionalID, engagement.Services, engagement.Status,
	)
	if err != nil {
		r.log.Error("Failed to add engagement", "error", err, "event_id", engagement.EventID)
		return false, normalizeErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *engagementRepository) Remove(ctx context.Context, eventID, professionalID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM engagements WHERE event_id = $1 AND professional_id = $2`,
		eventID, professionalID,
	)
	if err != nil {
		r.log.Error("Failed to remove engagement", "error", err, "event_id", eventID)
		return false, normalizeErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *engagementRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Engagement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_id, professional_id, services, status, created_at FROM engagements WHERE event_id = $1`,
		eventID,
	)
	if err != nil {
		r.log.Error("Failed to list engagements", "error", err, "event_id", eventID)
		return nil, normalizeErr(err)
	}
	defer rows.Close()

	var engagements []*domain.Engagement
	for rows.Next() {
		engagement := &domain.Engagement{}
		if err := rows.Scan(&engagement.EventID, &engagement.ProfessionalID, &engagement.Services, &engagement.Status, &engagement.CreatedAt); err != nil {
			return nil, err
		}
		engagements = append(engagements, engagement)
	}

	return engagements, rows.Err()
}

func (r *engagementRepository) ListListingsByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*domain.Listing, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, professional_id, event_id, services, title, price, start_date, end_date, status, created_at
		 FROM listings WHERE professional_id = $1 ORDER BY created_at DESC`,
		professionalID,
	)
	if err != nil {
		r.log.Error("Failed to list listings", "error", err, "professional_id", professionalID)
		return nil, normalizeErr(err)
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		listing := &domain.Listing{}
		if err := rows.Scan(
			&listing.ID, &listing.ProfessionalID, &listing.EventID, &listing.Services,
			&listing.Title, &listing.Price, &listing.StartDate, &listing.EndDate,
			&listing.Status, &listing.CreatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}

	return listings, rows.Err()
}
