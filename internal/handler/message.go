package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"event_marketplace/internal/domain"
	"event_marketplace/internal/service"
	"event_marketplace/pkg/logger"
)

type MessageHandler struct {
	messageService      service.MessageService
	notificationService service.NotificationService
	log                 logger.Logger
}

func NewMessageHandler(messageService service.MessageService, notificationService service.NotificationService, log logger.Logger) *MessageHandler {
	return &MessageHandler{
		messageService:      messageService,
		notificationService: notificationService,
		log:                 log,
	}
}

type SendMessageRequest struct {
	ReceiverID uuid.UUID  `json:"receiver_id" binding:"required"`
	Kind       string     `json:"kind" binding:"required"`
	Content    string     `json:"content" binding:"required"`
	EventID    *uuid.UUID `json:"event_id"`
	Services   []string   `json:"services"`
	Price      *float64   `json:"price"`
	ParentID   *int64     `json:"parent_id"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, events, err := h.messageService.Send(c.Request.Context(), service.SendMessageInput{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Kind:       domain.MessageKind(req.Kind),
		Content:    req.Content,
		EventID:    req.EventID,
		Services:   req.Services,
		Price:      req.Price,
		ParentID:   req.ParentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.notificationService.Dispatch(c.Request.Context(), events)

	c.JSON(http.StatusCreated, message)
}

func (h *MessageHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message ID"})
		return
	}

	message, err := h.messageService.GetByID(c.Request.Context(), messageID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, message)
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *MessageHandler) Edit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message ID"})
		return
	}

	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.messageService.Edit(c.Request.Context(), messageID, userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, message)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message ID"})
		return
	}

	message, err := h.messageService.SoftDelete(c.Request.Context(), messageID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, message)
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *MessageHandler) Transition(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message ID"})
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.messageService.Transition(c.Request.Context(), messageID, userID, domain.MessageStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	h.notificationService.Dispatch(c.Request.Context(), result.Events)

	c.JSON(http.StatusOK, result)
}

func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	counterpartID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	updated, err := h.messageService.MarkConversationRead(c.Request.Context(), userID, counterpartID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
