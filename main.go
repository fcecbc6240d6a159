package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"logistics-admin-service/api"
	"logistics-admin-service/config"
	"logistics-admin-service/core"
	"logistics-admin-service/realtime"
	"logistics-admin-service/shipments"
	"logistics-admin-service/shipments/repositories"
	"logistics-admin-service/shipments/tracking"
	"logistics-admin-service/workers/capacity"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := core.NewLogger(*cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := core.OpenDatabase(cfg.DSN)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	if err := core.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	redisClient := connectRedis(cfg.RedisURL, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	hub := realtime.NewHub(logger)
	notifiers := realtime.Fanout{hub}
	if cfg.NatsURL != "" {
		publisher, err := realtime.NewNATSPublisher(cfg.NatsURL, logger)
		if err != nil {
			logger.Warn("NATS unavailable, change feed stays in-process", zap.Error(err))
		} else {
			defer publisher.Close()
			notifiers = append(notifiers, publisher)
		}
	}

	clock := func() time.Time { return time.Now().In(cfg.Tracking.Location) }

	sequenceRepo := repositories.NewSequenceRepository(db, cfg.Tracking.RPCEnabled)
	allocator := tracking.NewAllocator(sequenceRepo, logger, tracking.WithClock(clock))
	service := shipments.NewService(
		repositories.NewShipmentRepository(db),
		allocator,
		repositories.NewTrackingCache(redisClient, cfg.Tracking.CacheTTL, logger),
		notifiers,
		logger,
		shipments.WithClock(clock),
	)

	orchestrator := core.NewOrchestrator(logger, []core.Worker{
		capacity.NewWorker(logger, sequenceRepo, cfg.Capacity, clock),
	})
	c, err := orchestrator.Start()
	if err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}
	defer c.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(cfg.HTTP, api.Dependencies{
		Service: service,
		Feed:    hub,
		Health: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Logger: logger,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for termination signal to exit gracefully
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}

// connectRedis returns nil when no URL is configured or redis cannot be reached;
// tracking lookups then go straight to the database.
func connectRedis(url string, logger *zap.Logger) *redis.Client {
	if url == "" {
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("Invalid REDIS_URL, tracking cache disabled", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, tracking cache disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}

	return client
}
