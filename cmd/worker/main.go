package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/adapters/event"
	"github.com/khoahotran/portfolio-ai/adapters/llm"
	"github.com/khoahotran/portfolio-ai/adapters/persistence"
	portfolioUC "github.com/khoahotran/portfolio-ai/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-ai/internal/config"
	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
	"github.com/khoahotran/portfolio-ai/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting PortfolioAI worker...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "portfolio-ai-worker")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	var portfolioRepo portfolio.Repository = persistence.NewPostgresPortfolioRepo(dbPool, appLogger)
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Warn("Redis unavailable, cache warm-up disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			portfolioRepo = persistence.NewCachedPortfolioRepo(portfolioRepo, redisClient, cfg.Redis.CacheTTL, appLogger)
		}
	}

	parser, err := llm.NewResumeParser(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize resume parser", err)
	}

	processUC := portfolioUC.NewProcessResumeUseCase(portfolioRepo, parser, appLogger)

	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicResumeEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicResumeEvents), zap.String("group_id", cfg.Kafka.GroupID))

	handle := func(ctx context.Context, payload event.ResumeEventPayload) error {
		_, err := processUC.Execute(ctx, portfolioUC.ProcessResumeInput{
			PortfolioID: payload.PortfolioID,
			OwnerID:     payload.OwnerID,
			ResumeText:  payload.ResumeText,
			ResumeURL:   payload.ResumeURL,
		})
		return err
	}

	event.NewResumeConsumer(consumer, handle, appLogger).Run(ctx)
}
