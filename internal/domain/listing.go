package domain

import (
	"time"

	"github.com/google/uuid"
)

type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusCompleted ListingStatus = "completed"
	ListingStatusCancelled ListingStatus = "cancelled"
)

// Listing — единица работы, создается ровно один раз при принятии запроса
type Listing struct {
	ID             uuid.UUID     `json:"id"`
	ProfessionalID uuid.UUID     `json:"professional_id"`
	EventID        uuid.UUID     `json:"event_id"`
	Services       []string      `json:"services"`
	Title          string        `json:"title"`
	Price          float64       `json:"price"`
	StartDate      time.Time     `json:"start_date"`
	EndDate        time.Time     `json:"end_date"`
	Status         ListingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}
