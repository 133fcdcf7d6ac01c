package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/fusion-resume/adapters/event"
	httpAdapter "github.com/khoahotran/fusion-resume/adapters/http"
	"github.com/khoahotran/fusion-resume/adapters/persistence"
	blurbUC "github.com/khoahotran/fusion-resume/internal/application/usecase/blurb"
	"github.com/khoahotran/fusion-resume/internal/config"
	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
	"github.com/khoahotran/fusion-resume/pkg/logger"
	"github.com/khoahotran/fusion-resume/pkg/metrics"
	"github.com/khoahotran/fusion-resume/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewZapLogger("development").Fatal("Cannot load config", err)
	}

	log := logger.NewZapLogger(cfg.App.Env)
	defer log.Sync()

	log.Info("Starting Fusion Resume API Server...", zap.String("env", cfg.App.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg, log, "fusion-resume-api")
	if err != nil {
		log.Fatal("Cannot init tracing", err)
	}

	// Storage
	var (
		repo   blurb.Repository
		dbPool *pgxpool.Pool
	)
	if cfg.DB.DSN != "" {
		dbPool, err = persistence.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal("Cannot connect Postgres", err)
		}
		defer dbPool.Close()
		repo = persistence.NewPostgresBlurbRepo(dbPool, log)
	} else {
		log.Warn("DB_DSN is empty, blurbs are kept in memory")
		repo = persistence.NewMemoryBlurbRepo()
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = persistence.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal("Cannot connect Redis", err)
		}
		defer redisClient.Close()
	}

	// Events
	var publisher blurb.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, log)
		if err != nil {
			log.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	}

	// Use cases & handlers
	blurbUseCase := blurbUC.NewBlurbUseCase(repo, publisher, log)
	blurbHandler := httpAdapter.NewBlurbHandler(blurbUseCase, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Config:       cfg,
		Logger:       log,
		BlurbHandler: blurbHandler,
		Redis:        redisClient,
		Gatherer:     reg,
		Ready: func(ctx context.Context) error {
			if dbPool == nil {
				return nil
			}
			return dbPool.Ping(ctx)
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err)
	}
	blurbUseCase.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces", err)
	}
	log.Info("Server exited")
}
