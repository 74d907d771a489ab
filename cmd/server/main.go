// Package main runs the circles platform HTTP server with WebSocket presence
// and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/circlehub/backend/config"
	"github.com/circlehub/backend/internal/auth"
	"github.com/circlehub/backend/internal/circles"
	"github.com/circlehub/backend/internal/flags"
	"github.com/circlehub/backend/internal/follows"
	"github.com/circlehub/backend/internal/middleware"
	"github.com/circlehub/backend/internal/models"
	"github.com/circlehub/backend/internal/realtime"
	"github.com/circlehub/backend/internal/registrations"
	"github.com/circlehub/backend/internal/tags"
	"github.com/circlehub/backend/pkg/database"
	"github.com/circlehub/backend/pkg/queue"
	"github.com/circlehub/backend/pkg/redis"
	"github.com/circlehub/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Circles
	circleRepo := circles.NewRepository(pool)
	circleHandler := circles.NewHandler(circleRepo)

	// Registrations
	registrationRepo := registrations.NewRepository(pool)
	registrationHandler := registrations.NewHandler(registrationRepo, logger)

	// Tags
	tagRepo := tags.NewRepository(pool)
	tagHandler := tags.NewHandler(tagRepo)

	// Flags + moderation queue
	flagRepo := flags.NewRepository(pool)
	flagHandler := flags.NewHandler(flagRepo, jobQueue, logger)

	// Follows
	followRepo := follows.NewRepository(pool)
	followHandler := follows.NewHandler(followRepo)

	wsValidate := func(token string) (int64, string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return 0, "", err
		}
		return claims.UserID, claims.Username, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public, rate limited)
	authGroup := router.Group("/auth")
	authGroup.Use(middleware.RateLimit(rdb.Client, cfg.RateLimit.Requests, cfg.RateLimit.WindowSec, logger))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Circles
		api.GET("/circles", circleHandler.List)
		api.POST("/circles", circleHandler.Create)
		api.GET("/circles/following", circleHandler.ListFollowing)
		api.GET("/circles/registered", registrationHandler.ListRegistered)
		api.GET("/circles/:id", circleHandler.GetByID)
		api.PATCH("/circles/:id", circleHandler.Update)
		api.DELETE("/circles/:id", circleHandler.Delete)
		api.GET("/circles/:id/presence", circleHandler.Presence(hub))

		// Membership
		api.PUT("/circles/:id/registration", registrationHandler.Register)
		api.DELETE("/circles/:id/registration", registrationHandler.Deregister)
		api.GET("/circles/:id/registrants", registrationHandler.ListRegistrants)

		// Tags
		api.GET("/tags", tagHandler.ListAll)
		api.GET("/circles/:id/tags", tagHandler.ListByCircle)
		api.PUT("/circles/:id/tags", tagHandler.Add)
		api.DELETE("/circles/:id/tags", tagHandler.Remove)

		// Flags and moderation
		api.POST("/circles/:id/flags", flagHandler.Raise)
		api.GET("/circles/:id/flags", flagHandler.ListByCircle)
		api.DELETE("/circles/:id/flags/mine", flagHandler.ClearOwn)
		api.DELETE("/circles/:id/flags", middleware.RequireRole(models.RoleAdmin), flagHandler.ClearAll)
		api.GET("/moderation/queue", flagHandler.ModerationQueue)

		// Follows
		api.GET("/users/following", followHandler.ListFollowed)
		api.PUT("/users/:id/follow", followHandler.Follow)
		api.DELETE("/users/:id/follow", followHandler.Unfollow)
		api.GET("/users/:id/circles", circleHandler.ListByUser)
	}

	// WebSocket presence (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, wsValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
