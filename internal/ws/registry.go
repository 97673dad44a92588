package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"event_marketplace/pkg/logger"
)

// PresenceStore — персистентный след live-статуса (users.is_online / last_seen).
// Реестр в памяти остается источником истины для рассылки.
type PresenceStore interface {
	SetPresence(ctx context.Context, userID uuid.UUID, online bool, lastSeen time.Time) error
}

// StatusChange — широковещательное событие смены статуса
type StatusChange struct {
	UserID   uuid.UUID `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewEnvelope(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

const (
	EventJoin         = "join"
	EventLeave        = "leave"
	EventGoingOffline = "going-offline"
	EventStatusChange = "status-change"
	EventError        = "error"
)

// Дедлайн на запись персистентного статуса: контекст соединения живет
// столько же, сколько само соединение, и сам по себе границы не дает
const presenceWriteTimeout = 5 * time.Second

// Registry — таблица живых сессий: user id -> множество соединений.
// Владение явное: создается в main, передается в websocket handler.
// Все мутации таблицы под мьютексом, рассылка выполняется вне блокировки.
type Registry struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[string]*Client

	store PresenceStore
	log   logger.Logger
}

func NewRegistry(store PresenceStore, log logger.Logger) *Registry {
	return &Registry{
		clients: make(map[uuid.UUID]map[string]*Client),
		store:   store,
		log:     log,
	}
}

// Add регистрирует соединение. Если это первое живое соединение пользователя,
// рассылается ровно один online-статус и обновляется персистентный флаг.
// Повторная регистрация того же соединения — no-op.
func (r *Registry) Add(ctx context.Context, client *Client) {
	r.mu.Lock()
	connections, ok := r.clients[client.UserID]
	if !ok {
		connections = make(map[string]*Client)
		r.clients[client.UserID] = connections
	}
	if _, exists := connections[client.ConnID]; exists {
		r.mu.Unlock()
		return
	}
	first := len(connections) == 0
	connections[client.ConnID] = client
	total := len(connections)
	r.mu.Unlock()

	r.log.Info("Presence connection added", "user_id", client.UserID, "conn_id", client.ConnID, "connections", total)

	if first {
		now := time.Now()
		storeCtx, cancel := context.WithTimeout(ctx, presenceWriteTimeout)
		if err := r.store.SetPresence(storeCtx, client.UserID, true, now); err != nil {
			r.log.Error("Failed to persist online status", "error", err, "user_id", client.UserID)
		}
		cancel()
		r.broadcastStatus(StatusChange{UserID: client.UserID, Online: true, LastSeen: now})
	}
}

// Remove убирает соединение из таблицы. Когда соединений не осталось,
// рассылается ровно один offline-статус с текущим временем.
// Само websocket-соединение здесь не закрывается.
func (r *Registry) Remove(ctx context.Context, userID uuid.UUID, connID string) {
	r.mu.Lock()
	connections, ok := r.clients[userID]
	if !ok {
		r.mu.Unlock()
		return
	}
	if _, exists := connections[connID]; !exists {
		r.mu.Unlock()
		return
	}
	delete(connections, connID)
	last := len(connections) == 0
	if last {
		delete(r.clients, userID)
	}
	r.mu.Unlock()

	r.log.Info("Presence connection removed", "user_id", userID, "conn_id", connID)

	if last {
		now := time.Now()
		storeCtx, cancel := context.WithTimeout(ctx, presenceWriteTimeout)
		if err := r.store.SetPresence(storeCtx, userID, false, now); err != nil {
			r.log.Error("Failed to persist offline status", "error", err, "user_id", userID)
		}
		cancel()
		r.broadcastStatus(StatusChange{UserID: userID, Online: false, LastSeen: now})
	}
}

func (r *Registry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients[userID]) > 0
}

func (r *Registry) OnlineUsers() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]uuid.UUID, 0, len(r.clients))
	for userID := range r.clients {
		users = append(users, userID)
	}
	return users
}

// Close — teardown при остановке процесса: закрывает все исходящие каналы
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, connections := range r.clients {
		for _, client := range connections {
			close(client.Send)
		}
	}
	r.clients = make(map[uuid.UUID]map[string]*Client)
}

func (r *Registry) broadcastStatus(change StatusChange) {
	payload, err := NewEnvelope(EventStatusChange, change)
	if err != nil {
		r.log.Error("Failed to encode status change", "error", err)
		return
	}

	r.mu.RLock()
	targets := make([]*Client, 0)
	for _, connections := range r.clients {
		for _, client := range connections {
			targets = append(targets, client)
		}
	}
	r.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- payload:
		default:
			r.log.Warn("Send buffer full, dropping status change", "user_id", client.UserID, "conn_id", client.ConnID)
		}
	}
}
