package service

import (
	"event_marketplace/internal/config"
	"event_marketplace/internal/repository"
	"event_marketplace/pkg/logger"
)

type Services struct {
	Auth         AuthService
	Event        EventService
	Message      MessageService
	Conversation ConversationService
	Notification NotificationService
	RateLimit    RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Services {
	return &Services{
		Auth:         NewAuthService(repos.User, cfg.JWT, log),
		Event:        NewEventService(repos.Event, repos.Engagement, log),
		Message:      NewMessageService(repos.Message, repos.Engagement, log),
		Conversation: NewConversationService(repos.Message, log),
		Notification: NewNotificationService(repos.Notification, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, log),
	}
}
