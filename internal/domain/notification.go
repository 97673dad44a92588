package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationEventCreated         NotificationType = "event_created"
	NotificationEventUpdated         NotificationType = "event_updated"
	NotificationEventCancelled       NotificationType = "event_cancelled"
	NotificationEventCompleted       NotificationType = "event_completed"
	NotificationServiceRequest       NotificationType = "service_request"
	NotificationServiceAccepted      NotificationType = "service_accepted"
	NotificationServiceRejected      NotificationType = "service_rejected"
	NotificationHireRequest          NotificationType = "hire_request"
	NotificationHireAccepted         NotificationType = "hire_accepted"
	NotificationHireRejected         NotificationType = "hire_rejected"
	NotificationProfessionalJoined   NotificationType = "professional_joined"
	NotificationProfessionalLeft     NotificationType = "professional_left"
	NotificationProfessionalReviewed NotificationType = "professional_reviewed"
	NotificationMessageReceived      NotificationType = "message_received"
	NotificationMessageRequest       NotificationType = "message_request"
	NotificationPaymentReceived      NotificationType = "payment_received"
	NotificationPaymentSent          NotificationType = "payment_sent"
	NotificationPaymentFailed        NotificationType = "payment_failed"
	NotificationReviewReceived       NotificationType = "review_received"
	NotificationSystemUpdate         NotificationType = "system_update"
	NotificationAccountUpdate        NotificationType = "account_update"
)

// notificationTitles — фиксированные заголовки для каждого типа уведомления
var notificationTitles = map[NotificationType]string{
	NotificationEventCreated:         "New Event Created",
	NotificationEventUpdated:         "Event Updated",
	NotificationEventCancelled:       "Event Cancelled",
	NotificationEventCompleted:       "Event Completed",
	NotificationServiceRequest:       "New Service Request",
	NotificationServiceAccepted:      "Service Request Accepted",
	NotificationServiceRejected:      "Service Request Rejected",
	NotificationHireRequest:          "New Hire Request",
	NotificationHireAccepted:         "Hire Request Accepted",
	NotificationHireRejected:         "Hire Request Rejected",
	NotificationProfessionalJoined:   "Professional Joined",
	NotificationProfessionalLeft:     "Professional Left",
	NotificationProfessionalReviewed: "Professional Reviewed",
	NotificationMessageReceived:      "New Message",
	NotificationMessageRequest:       "New Message Request",
	NotificationPaymentReceived:      "Payment Received",
	NotificationPaymentSent:          "Payment Sent",
	NotificationPaymentFailed:        "Payment Failed",
	NotificationReviewReceived:       "New Review",
	NotificationSystemUpdate:         "System Update",
	NotificationAccountUpdate:        "Account Update",
}

func (t NotificationType) Valid() bool {
	_, ok := notificationTitles[t]
	return ok
}

func (t NotificationType) Title() string {
	return notificationTitles[t]
}

type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	SenderID    *uuid.UUID       `json:"sender_id,omitempty"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	EventID     *uuid.UUID       `json:"event_id,omitempty"`
	MessageID   *int64           `json:"message_id,omitempty"`
	IsRead      bool             `json:"is_read"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationEvent — доменное событие, порождаемое командой, меняющей состояние.
// Диспетчер превращает его в записи Notification для каждого получателя.
type NotificationEvent struct {
	Type       NotificationType
	ActorID    uuid.UUID
	Recipients []uuid.UUID
	EventID    *uuid.UUID
	MessageID  *int64
	Message    string
	Metadata   map[string]any
}
