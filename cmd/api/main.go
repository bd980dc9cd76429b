package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-matchmaking-backend/config"
	"go-matchmaking-backend/internal/cache"
	v1 "go-matchmaking-backend/internal/delivery/http/v1"
	"go-matchmaking-backend/internal/domain"
	"go-matchmaking-backend/internal/matching"
	"go-matchmaking-backend/internal/repository/postgres"
	"go-matchmaking-backend/internal/usecase"
	"go-matchmaking-backend/pkg/database"
	"go-matchmaking-backend/pkg/logger"
	"go-matchmaking-backend/pkg/redis"

	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting matchmaking backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (cross-instance cache tier; optional)
	var redisClient *goredis.Client
	var remoteTier cache.RemoteTier
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(redis.Config{
			URL:      cfg.RedisURL,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			// A dead cache tier is not fatal; requests degrade to direct
			// computation.
			logger.Log.Warn("Redis unavailable, cross-instance tier disabled", "error", err)
		} else {
			remoteTier = cache.NewRedisTier(redisClient)
			defer redisClient.Close()
		}
	}

	// 5. Setup Cache Coordinator (lifecycle owned here, injected below)
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	tieredCache := cache.NewTieredCache(cfg.LocalCacheSize, ttl, remoteTier, logger.Log)
	defer tieredCache.Purge()

	// 6. Setup Repositories
	profileRepo := postgres.NewProfileRepository(dbPool)
	eventRepo := postgres.NewEventRepository(dbPool)

	// 7. Setup Matching Pipeline
	weights := domain.ScoringWeights{
		Distance: cfg.WeightDistance,
		Age:      cfg.WeightAge,
		Sports:   cfg.WeightSports,
		Verified: cfg.WeightVerified,
		Height:   cfg.WeightHeight,
	}
	pipeline := matching.NewPipeline(weights, cfg.MinMatchScore, cfg.BoundingBoxMargin)

	// 8. Setup UseCases
	validate := validator.New()
	matchUC := usecase.NewMatchUsecase(usecase.MatchUsecaseDeps{
		Profiles:           profileRepo,
		Events:             eventRepo,
		Cache:              tieredCache,
		Pipeline:           pipeline,
		Validate:           validate,
		Log:                logger.Log,
		DefaultLimit:       cfg.DefaultLimit,
		MaxLimit:           cfg.MaxLimit,
		CandidateOverfetch: cfg.CandidateOverfetch,
		RetryAttempts:      cfg.UpstreamRetryAttempts,
		RetryDelay:         time.Duration(cfg.UpstreamRetryDelayMs) * time.Millisecond,
	})
	healthUC := usecase.NewHealthUsecase(dbPool, redisClient)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		MatchUC:  matchUC,
		HealthUC: healthUC,
		Log:      logger.Log,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
