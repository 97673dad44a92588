package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event_marketplace/pkg/logger"
)

func newAttachedClient(registry *Registry, userID uuid.UUID) *Client {
	return &Client{
		UserID:   userID,
		ConnID:   uuid.NewString(),
		registry: registry,
		log:      logger.New("error"),
		Send:     make(chan []byte, 16),
	}
}

func joinEnvelope(t *testing.T, room string) []byte {
	t.Helper()
	raw, err := NewEnvelope(EventJoin, map[string]string{"room": room})
	require.NoError(t, err)
	return raw
}

func requireErrorEnvelope(t *testing.T, client *Client) string {
	t.Helper()
	select {
	case raw := <-client.Send:
		var envelope Envelope
		require.NoError(t, json.Unmarshal(raw, &envelope))
		require.Equal(t, EventError, envelope.Event)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(envelope.Data, &payload))
		return payload["message"]
	default:
		t.Fatal("expected an error envelope")
		return ""
	}
}

func TestHandleEventJoinOwnRoom(t *testing.T) {
	registry, _ := newTestRegistry()
	ctx := context.Background()

	client := newAttachedClient(registry, uuid.New())
	client.handleEvent(ctx, joinEnvelope(t, client.UserID.String()))

	assert.True(t, registry.IsOnline(client.UserID))
	assert.Empty(t, drain(client), "no error expected on own-room join")
}

func TestHandleEventForeignRoomRejected(t *testing.T) {
	registry, store := newTestRegistry()
	ctx := context.Background()

	client := newAttachedClient(registry, uuid.New())
	client.handleEvent(ctx, joinEnvelope(t, uuid.NewString()))

	assert.Equal(t, "cannot join another user's room", requireErrorEnvelope(t, client))
	assert.False(t, registry.IsOnline(client.UserID))
	assert.Empty(t, store.all())
}

func TestHandleEventLeaveThenRejoin(t *testing.T) {
	registry, store := newTestRegistry()
	ctx := context.Background()

	client := newAttachedClient(registry, uuid.New())
	client.handleEvent(ctx, joinEnvelope(t, client.UserID.String()))
	require.True(t, registry.IsOnline(client.UserID))
	drain(client)

	// Мягкий уход снимает с учета, но канал и соединение остаются живы
	leave, err := NewEnvelope(EventLeave, nil)
	require.NoError(t, err)
	client.handleEvent(ctx, leave)
	assert.False(t, registry.IsOnline(client.UserID))

	// Повторный join той же сессии возвращает пользователя в онлайн
	client.handleEvent(ctx, joinEnvelope(t, client.UserID.String()))
	assert.True(t, registry.IsOnline(client.UserID))

	records := store.all()
	require.Len(t, records, 3)
	assert.True(t, records[0].Online)
	assert.False(t, records[1].Online)
	assert.True(t, records[2].Online)
}

func TestHandleEventGoingOfflineIsSoftLeave(t *testing.T) {
	registry, _ := newTestRegistry()
	ctx := context.Background()

	client := newAttachedClient(registry, uuid.New())
	client.handleEvent(ctx, joinEnvelope(t, client.UserID.String()))
	drain(client)

	raw, err := NewEnvelope(EventGoingOffline, nil)
	require.NoError(t, err)
	client.handleEvent(ctx, raw)

	assert.False(t, registry.IsOnline(client.UserID))

	// Канал не закрыт: сессию можно возобновить без нового рукопожатия
	client.handleEvent(ctx, joinEnvelope(t, client.UserID.String()))
	assert.True(t, registry.IsOnline(client.UserID))
}

func TestHandleEventMalformed(t *testing.T) {
	registry, _ := newTestRegistry()
	ctx := context.Background()

	client := newAttachedClient(registry, uuid.New())

	client.handleEvent(ctx, []byte("{not json"))
	assert.Equal(t, "malformed message", requireErrorEnvelope(t, client))

	client.handleEvent(ctx, []byte(fmt.Sprintf(`{"event":%q,"data":"oops"}`, EventJoin)))
	assert.Equal(t, "malformed join payload", requireErrorEnvelope(t, client))

	client.handleEvent(ctx, []byte(`{"event":"teleport"}`))
	assert.Equal(t, "unknown event", requireErrorEnvelope(t, client))

	assert.False(t, registry.IsOnline(client.UserID))
}
