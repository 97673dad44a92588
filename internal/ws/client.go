package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"event_marketplace/pkg/logger"
)

const (
	// Время на запись сообщения клиенту
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Период ping, должен быть меньше pongWait
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 4096
)

// Client связывает websocket-соединение с реестром присутствия
type Client struct {
	UserID uuid.UUID
	ConnID string

	registry *Registry
	conn     *websocket.Conn
	log      logger.Logger

	// Буферизованный канал исходящих сообщений
	Send chan []byte
}

func NewClient(registry *Registry, conn *websocket.Conn, userID uuid.UUID, log logger.Logger) *Client {
	return &Client{
		UserID:   userID,
		ConnID:   uuid.NewString(),
		registry: registry,
		conn:     conn,
		log:      log,
		Send:     make(chan []byte, 16),
	}
}

type joinPayload struct {
	Room string `json:"room"`
}

// ReadPump читает входящие события соединения и транслирует их в реестр.
// При выходе (graceful leave или обрыв) соединение снимается с учета.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.registry.Remove(ctx, c.UserID, c.ConnID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Websocket read error", "error", err, "user_id", c.UserID)
			}
			return
		}

		c.handleEvent(ctx, raw)
	}
}

// handleEvent транслирует входящее событие протокола в операции реестра
func (c *Client) handleEvent(ctx context.Context, raw []byte) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.sendError("malformed message")
		return
	}

	switch envelope.Event {
	case EventJoin:
		var payload joinPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			c.sendError("malformed join payload")
			return
		}
		// Разрешено входить только в собственную комнату
		if payload.Room != c.UserID.String() {
			c.sendError("cannot join another user's room")
			return
		}
		c.registry.Add(ctx, c)

	case EventLeave, EventGoingOffline:
		// Мягкий уход: снимаем с учета, соединение не закрываем
		c.registry.Remove(ctx, c.UserID, c.ConnID)

	default:
		c.sendError("unknown event")
	}
}

// WritePump отправляет клиенту исходящие сообщения и поддерживает ping/pong
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Реестр закрыл канал
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Warn("Websocket write error", "error", err, "user_id", c.UserID)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendError(message string) {
	payload, err := NewEnvelope(EventError, map[string]string{"message": message})
	if err != nil {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}
