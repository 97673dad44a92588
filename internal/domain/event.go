package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusPlanned   EventStatus = "planned"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

type EngagementStatus string

const (
	EngagementStatusPending  EngagementStatus = "pending"
	EngagementStatusAccepted EngagementStatus = "accepted"
	EngagementStatusRejected EngagementStatus = "rejected"
)

// Engagement — привязка специалиста к событию с собственным статусом.
// Не более одной записи на пару (event, professional).
type Engagement struct {
	EventID        uuid.UUID        `json:"event_id"`
	ProfessionalID uuid.UUID        `json:"professional_id"`
	Services       []string         `json:"services"`
	Status         EngagementStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
}

type Event struct {
	ID          uuid.UUID   `json:"id"`
	OrganizerID uuid.UUID   `json:"organizer_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Budget      *float64    `json:"budget,omitempty"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
