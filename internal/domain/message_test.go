package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageKindValid(t *testing.T) {
	assert.True(t, MessageKindPlain.Valid())
	assert.True(t, MessageKindServiceRequest.Valid())
	assert.True(t, MessageKindHireRequest.Valid())
	assert.True(t, MessageKindServiceOffer.Valid())
	assert.False(t, MessageKind("telegram").Valid())
	assert.False(t, MessageKind("").Valid())
}

func TestMessageKindNegotiable(t *testing.T) {
	assert.False(t, MessageKindPlain.IsNegotiable())
	assert.True(t, MessageKindServiceRequest.IsNegotiable())
	assert.True(t, MessageKindHireRequest.IsNegotiable())
	assert.True(t, MessageKindServiceOffer.IsNegotiable())
}

func TestMessageKindRequiresEvent(t *testing.T) {
	assert.True(t, MessageKindServiceRequest.RequiresEvent())
	assert.True(t, MessageKindHireRequest.RequiresEvent())
	assert.False(t, MessageKindServiceOffer.RequiresEvent())
	assert.False(t, MessageKindPlain.RequiresEvent())
}

func TestMessageStatusTerminal(t *testing.T) {
	assert.False(t, MessageStatusUnread.Terminal())
	assert.False(t, MessageStatusRead.Terminal())
	assert.True(t, MessageStatusAccepted.Terminal())
	assert.True(t, MessageStatusRejected.Terminal())
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		kind    MessageKind
		status  MessageStatus
		target  MessageStatus
		allowed bool
	}{
		{"unread to read", MessageKindPlain, MessageStatusUnread, MessageStatusRead, true},
		{"read to read", MessageKindPlain, MessageStatusRead, MessageStatusRead, false},
		{"unread hire to accepted", MessageKindHireRequest, MessageStatusUnread, MessageStatusAccepted, true},
		{"read hire to accepted", MessageKindHireRequest, MessageStatusRead, MessageStatusAccepted, true},
		{"read offer to rejected", MessageKindServiceOffer, MessageStatusRead, MessageStatusRejected, true},
		{"plain to accepted", MessageKindPlain, MessageStatusUnread, MessageStatusAccepted, false},
		{"plain to rejected", MessageKindPlain, MessageStatusRead, MessageStatusRejected, false},
		{"accepted is final", MessageKindHireRequest, MessageStatusAccepted, MessageStatusRejected, false},
		{"rejected is final", MessageKindHireRequest, MessageStatusRejected, MessageStatusAccepted, false},
		{"terminal to read", MessageKindHireRequest, MessageStatusAccepted, MessageStatusRead, false},
		{"unread to unread", MessageKindPlain, MessageStatusUnread, MessageStatusUnread, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := &Message{Kind: tt.kind, Status: tt.status}
			assert.Equal(t, tt.allowed, message.CanTransitionTo(tt.target))
		})
	}
}
