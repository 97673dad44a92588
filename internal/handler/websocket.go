package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"event_marketplace/internal/service"
	"event_marketplace/internal/ws"
	"event_marketplace/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	authService service.AuthService
	registry    *ws.Registry
	log         logger.Logger
}

func NewWebSocketHandler(authService service.AuthService, registry *ws.Registry, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		authService: authService,
		registry:    registry,
		log:         log,
	}
}

// HandlePresence обслуживает live-канал присутствия.
// Соединение проходит состояния connecting -> authenticated -> active -> closed:
// без валидного bearer-токена соединение закрывается сразу после сигнала
// об ошибке аутентификации, без рассылки статуса.
func (h *WebSocketHandler) HandlePresence(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	token := c.Query("token")
	user, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		payload, encErr := ws.NewEnvelope(ws.EventError, map[string]string{"message": "authentication failed"})
		if encErr == nil {
			conn.WriteMessage(websocket.TextMessage, payload)
		}
		conn.Close()
		return
	}

	client := ws.NewClient(h.registry, conn, user.ID, h.log)

	// Соединение активно: регистрируем в таблице сессий.
	// Фоновый контекст, т.к. время жизни соединения не связано
	// с HTTP-запросом рукопожатия.
	ctx := context.Background()
	h.registry.Add(ctx, client)

	go client.WritePump()
	go client.ReadPump(ctx)
}
