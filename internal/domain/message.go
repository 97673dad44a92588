package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	MessageKindPlain          MessageKind = "plain"
	MessageKindServiceRequest MessageKind = "service_request"
	MessageKindHireRequest    MessageKind = "hire_request"
	MessageKindServiceOffer   MessageKind = "service_offer"
)

type MessageStatus string

const (
	MessageStatusUnread   MessageStatus = "unread"
	MessageStatusRead     MessageStatus = "read"
	MessageStatusAccepted MessageStatus = "accepted"
	MessageStatusRejected MessageStatus = "rejected"
)

// MessageVersion — предыдущая версия содержимого, сохраняется при редактировании и удалении
type MessageVersion struct {
	Content  string    `json:"content"`
	EditedAt time.Time `json:"edited_at"`
	EditedBy uuid.UUID `json:"edited_by"`
}

type Message struct {
	ID         int64            `json:"id"`
	SenderID   uuid.UUID        `json:"sender_id"`
	ReceiverID uuid.UUID        `json:"receiver_id"`
	Kind       MessageKind      `json:"kind"`
	Content    string           `json:"content"`
	Status     MessageStatus    `json:"status"`
	EventID    *uuid.UUID       `json:"event_id,omitempty"`
	Services   []string         `json:"services,omitempty"`
	Price      *float64         `json:"price,omitempty"`
	ParentID   *int64           `json:"parent_id,omitempty"`
	IsEdited   bool             `json:"is_edited"`
	IsDeleted  bool             `json:"is_deleted"`
	DeletedAt  *time.Time       `json:"deleted_at,omitempty"`
	DeletedBy  *uuid.UUID       `json:"deleted_by,omitempty"`
	Versions   []MessageVersion `json:"versions,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (k MessageKind) Valid() bool {
	switch k {
	case MessageKindPlain, MessageKindServiceRequest, MessageKindHireRequest, MessageKindServiceOffer:
		return true
	}
	return false
}

// IsNegotiable — сообщение участвует в машине состояний accept/reject
func (k MessageKind) IsNegotiable() bool {
	switch k {
	case MessageKindServiceRequest, MessageKindHireRequest, MessageKindServiceOffer:
		return true
	}
	return false
}

// RequiresEvent — для этих типов обязательны событие и набор услуг
func (k MessageKind) RequiresEvent() bool {
	return k == MessageKindServiceRequest || k == MessageKindHireRequest
}

func (s MessageStatus) Valid() bool {
	switch s {
	case MessageStatusUnread, MessageStatusRead, MessageStatusAccepted, MessageStatusRejected:
		return true
	}
	return false
}

// Terminal — accepted и rejected закрывают переговоры, дальнейшие переходы запрещены
func (s MessageStatus) Terminal() bool {
	return s == MessageStatusAccepted || s == MessageStatusRejected
}

// CanTransitionTo проверяет допустимость перехода статуса.
// read — чистое подтверждение прочтения, возможно только из unread.
// accepted/rejected допустимы из любого нетерминального состояния.
func (m *Message) CanTransitionTo(target MessageStatus) bool {
	if m.Status.Terminal() {
		return false
	}
	switch target {
	case MessageStatusRead:
		return m.Status == MessageStatusUnread
	case MessageStatusAccepted, MessageStatusRejected:
		return m.Kind.IsNegotiable()
	}
	return false
}
