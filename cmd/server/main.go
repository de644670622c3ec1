package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workoutbuddy/server/internal/api"
	"workoutbuddy/server/internal/config"
	"workoutbuddy/server/internal/logger"
	"workoutbuddy/server/internal/repository"
	"workoutbuddy/server/internal/repository/file"
	mongorepo "workoutbuddy/server/internal/repository/mongo"
	"workoutbuddy/server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// @title Workout Buddy API
// @version 1.0
// @description Social fitness logging: workouts, friends, feed, and leaderboard.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Could not load config: %v", err)
	}

	if err := logger.Initialize(cfg.Log.Level); err != nil {
		logger.Log.Fatalf("Could not initialize logger: %v", err)
	}
	defer logger.Log.Sync()
	logger.Log.Infow("starting Workout Buddy server", "storage", cfg.Storage.Driver)

	// --- Storage backend ---
	var (
		userRepo       repository.UserRepository
		workoutRepo    repository.WorkoutRepository
		friendshipRepo repository.FriendshipRepository
	)

	switch cfg.Storage.Driver {
	case "file":
		store, err := file.Open(cfg.Storage.Path)
		if err != nil {
			logger.Log.Fatalf("Could not open file store: %v", err)
		}
		logger.Log.Infow("file store opened", "path", cfg.Storage.Path)
		userRepo = file.NewUserRepository(store)
		workoutRepo = file.NewWorkoutRepository(store)
		friendshipRepo = file.NewFriendshipRepository(store)

	default:
		dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
		if err != nil {
			logger.Log.Fatalf("Could not connect to MongoDB: %v", err)
		}
		defer func() {
			logger.Log.Info("disconnecting MongoDB")
			if err := mongorepo.DisconnectDB(dbClient); err != nil {
				logger.Log.Errorf("Failed to disconnect MongoDB: %v", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		logger.Log.Infow("database connection established", "database", cfg.Database.Name)

		// Index creation runs in the background; the unique indexes back the
		// username/email/pair invariants.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			mongorepo.EnsureUserIndexes(ctx, appDB.Collection("users"))
			mongorepo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
			mongorepo.EnsureFriendshipIndexes(ctx, appDB.Collection("friendships"))
			logger.Log.Info("index creation process completed")
		}()

		userRepo = mongorepo.NewMongoUserRepository(appDB)
		workoutRepo = mongorepo.NewMongoWorkoutRepository(appDB)
		friendshipRepo = mongorepo.NewMongoFriendshipRepository(appDB)
	}

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	workoutService := service.NewWorkoutService(workoutRepo)
	friendService := service.NewFriendService(userRepo, friendshipRepo)
	socialService := service.NewSocialService(userRepo, workoutRepo, friendshipRepo, friendService)

	// --- Router ---
	router := gin.New()
	router.Use(api.RequestLogger(logger.Log), gin.Recovery())
	api.SetupRoutes(router, cfg.JWT.Secret, cfg.Storage.Driver, authService, workoutService, friendService, socialService)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.Infow("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("server exiting")
}
