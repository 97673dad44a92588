package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"event_marketplace/internal/config"
	"event_marketplace/internal/handler"
	"event_marketplace/internal/middleware"
	"event_marketplace/internal/repository"
	"event_marketplace/internal/service"
	"event_marketplace/internal/ws"
	"event_marketplace/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to parse database DSN", "error", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	poolCfg.MaxConnIdleTime = cfg.Database.MaxIdleTime
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	// Подключение к Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Инициализация репозиториев и сервисов
	repos := repository.NewRepositories(dbPool, rdb, appLogger)
	services := service.NewServices(repos, cfg, appLogger)

	// Реестр живых сессий presence-канала
	registry := ws.NewRegistry(repos.User, appLogger)
	defer registry.Close()

	// Инициализация middleware и handlers
	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)
	handlers := handler.NewHandlers(services, registry, appLogger)

	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Публичные endpoints
		public := v1.Group("/auth")
		{
			public.POST("/register", rateLimitMiddleware.Limit(), handlers.Auth.Register)
			public.POST("/login", rateLimitMiddleware.Limit(), handlers.Auth.Login)
			public.POST("/refresh", handlers.Auth.RefreshToken)
		}

		// Защищенные endpoints
		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			// События
			events := protected.Group("/events")
			{
				events.POST("", handlers.Event.Create)
				events.GET("", handlers.Event.List)
				events.GET("/:id", handlers.Event.GetByID)
				events.PUT("/:id", handlers.Event.Update)
				events.POST("/:id/cancel", handlers.Event.Cancel)
				events.POST("/:id/complete", handlers.Event.Complete)
				events.POST("/:id/join", handlers.Event.Join)
				events.POST("/:id/leave", handlers.Event.Leave)
				events.GET("/:id/engagements", handlers.Event.ListEngagements)
			}

			// Сообщения и переговоры
			messages := protected.Group("/messages")
			{
				messages.POST("", rateLimitMiddleware.Limit(), handlers.Message.Send)
				messages.GET("/:id", handlers.Message.GetByID)
				messages.PUT("/:id", handlers.Message.Edit)
				messages.DELETE("/:id", handlers.Message.Delete)
				messages.POST("/:id/status", handlers.Message.Transition)
			}

			// Переписка
			conversations := protected.Group("/conversations")
			{
				conversations.GET("", handlers.Conversation.List)
				conversations.POST("/:userId/read", handlers.Message.MarkConversationRead)
			}

			// Запросы
			requests := protected.Group("/requests")
			{
				requests.GET("/sent", handlers.Conversation.ListSentRequests)
				requests.GET("/received", handlers.Conversation.ListReceivedRequests)
			}

			// Listings
			protected.GET("/listings", handlers.Event.ListListings)

			// Уведомления
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", handlers.Notification.List)
				notifications.PUT("/:id/read", handlers.Notification.MarkRead)
				notifications.PUT("/read-all", handlers.Notification.MarkAllRead)
			}
		}
	}

	// WebSocket endpoint для presence
	router.GET("/ws/presence", handlers.WebSocket.HandlePresence)

	return router
}
