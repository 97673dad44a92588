package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"event_marketplace/internal/service"
	"event_marketplace/pkg/logger"
)

type EventHandler struct {
	eventService        service.EventService
	notificationService service.NotificationService
	log                 logger.Logger
}

func NewEventHandler(eventService service.EventService, notificationService service.NotificationService, log logger.Logger) *EventHandler {
	return &EventHandler{
		eventService:        eventService,
		notificationService: notificationService,
		log:                 log,
	}
}

type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Budget      *float64  `json:"budget"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

func (h *EventHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, events, err := h.eventService.Create(c.Request.Context(), service.CreateEventInput{
		OrganizerID: userID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.notificationService.Dispatch(c.Request.Context(), events)

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetByID(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	event, err := h.eventService.GetByID(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	events, err := h.eventService.ListByOrganizer(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Budget      *float64   `json:"budget"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (h *EventHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, events, err := h.eventService.Update(c.Request.Context(), eventID, userID, service.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.notificationService.Dispatch(c.Request.Context(), events)

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	event, events, err := h.eventService.Cancel(c.Request.Context(), eventID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notificationService.Dispatch(c.Request.Context(), events)

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Complete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	event, events, err := h.eventService.Complete(c.Request.Context(), eventID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notificationService.Dispatch(c.Request.Context(), events)

	c.JSON(http.StatusOK, event)
}

type JoinEventRequest struct {
	Services []string `json:"services" binding:"required"`
}

func (h *EventHandler) Join(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	var req JoinEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.eventService.Join(c.Request.Context(), eventID, userID, req.Services)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notificationService.Dispatch(c.Request.Context(), events)

	c.JSON(http.StatusOK, gin.H{"message": "Joined event"})
}

func (h *EventHandler) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	events, err := h.eventService.Leave(c.Request.Context(), eventID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notificationService.Dispatch(c.Request.Context(), events)

	c.JSON(http.StatusOK, gin.H{"message": "Left event"})
}

func (h *EventHandler) ListEngagements(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	engagements, err := h.eventService.ListEngagements(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, engagements)
}

func (h *EventHandler) ListListings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	listings, err := h.eventService.ListListings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listings)
}
