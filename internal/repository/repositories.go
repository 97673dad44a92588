package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"event_marketplace/pkg/logger"
)

type Repositories struct {
	User         UserRepository
	Event        EventRepository
	Message      MessageRepository
	Engagement   EngagementRepository
	Notification NotificationRepository
	RateLimit    RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db, log),
		Event:        NewEventRepository(db, log),
		Message:      NewMessageRepository(db, log),
		Engagement:   NewEngagementRepository(db, log),
		Notification: NewNotificationRepository(db, log),
		RateLimit:    NewRateLimitRepository(redis, log),
	}
}
