package domain

import "github.com/google/uuid"

// Conversation — производная сводка переписки с одним собеседником.
// Не хранится в БД, пересчитывается из сообщений при чтении.
type Conversation struct {
	CounterpartID uuid.UUID `json:"counterpart_id"`
	LastMessage   *Message  `json:"last_message"`
	UnreadCount   int       `json:"unread_count"`
}
