package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/khoahotran/fusion-resume/adapters/event"
	"github.com/khoahotran/fusion-resume/adapters/persistence"
	blurbUC "github.com/khoahotran/fusion-resume/internal/application/usecase/blurb"
	"github.com/khoahotran/fusion-resume/internal/config"
	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
	"github.com/khoahotran/fusion-resume/pkg/logger"
	"github.com/khoahotran/fusion-resume/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewZapLogger("development").Fatal("Cannot load config", err)
	}

	log := logger.NewZapLogger(cfg.App.Env)
	defer log.Sync()

	log.Info("Starting Fusion Resume Audit Worker...", zap.String("group_id", cfg.Kafka.GroupID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg, log, "fusion-resume-worker")
	if err != nil {
		log.Fatal("Cannot init tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("Failed to flush traces", err)
		}
	}()

	// Database
	dbPool, err := persistence.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Worker use case
	auditUC := blurbUC.NewAuditBlurbEventUseCase(persistence.NewPostgresBlurbRepo(dbPool, log), log)

	// Kafka consumer
	consumer, err := event.NewKafkaBlurbEventConsumer(cfg, log)
	if err != nil {
		log.Fatal("Cannot init Kafka consumer", err)
	}
	defer consumer.Close()

	err = consumer.Run(ctx, func(ctx context.Context, e blurb.Event) error {
		_, err := auditUC.Execute(ctx, e)
		return err
	})
	if err != nil {
		log.Error("Worker stopped", err)
		return
	}
	log.Info("Worker exited")
}
