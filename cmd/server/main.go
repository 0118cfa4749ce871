package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/adapters/document"
	"github.com/khoahotran/portfolio-ai/adapters/event"
	httpAdapter "github.com/khoahotran/portfolio-ai/adapters/http"
	"github.com/khoahotran/portfolio-ai/adapters/llm"
	"github.com/khoahotran/portfolio-ai/adapters/media_storage"
	"github.com/khoahotran/portfolio-ai/adapters/persistence"
	"github.com/khoahotran/portfolio-ai/internal/application/service"
	authUC "github.com/khoahotran/portfolio-ai/internal/application/usecase/auth"
	portfolioUC "github.com/khoahotran/portfolio-ai/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-ai/internal/config"
	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/pkg/auth"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
	"github.com/khoahotran/portfolio-ai/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting PortfolioAI API server...", zap.String("processing_mode", cfg.App.ProcessingMode))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "portfolio-ai-api")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	var portfolioRepo portfolio.Repository = persistence.NewPostgresPortfolioRepo(dbPool, appLogger)

	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Warn("Redis unavailable, portfolio cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			portfolioRepo = persistence.NewCachedPortfolioRepo(portfolioRepo, redisClient, cfg.Redis.CacheTTL, appLogger)
		}
	}

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	storage, err := media_storage.NewResumeStorage(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize resume storage", err)
	}
	parser, err := llm.NewResumeParser(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize resume parser", err)
	}
	extractor := document.NewTextExtractor(cfg.Upload.MaxTextChars)

	var publisher service.EventPublisher
	if cfg.IsAsync() {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	}

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	processUseCase := portfolioUC.NewProcessResumeUseCase(portfolioRepo, parser, appLogger)
	parseUseCase := portfolioUC.NewParseResumeTextUseCase(parser, cfg.Upload.MaxTextChars, appLogger)
	uploadUseCase := portfolioUC.NewUploadResumeUseCase(storage, extractor, processUseCase, publisher, cfg.Upload.MaxBytes, appLogger)
	getUseCase := portfolioUC.NewGetPortfolioUseCase(portfolioRepo, appLogger)
	listUseCase := portfolioUC.NewListOwnerPortfoliosUseCase(portfolioRepo, appLogger)

	// HTTP
	rateLimiter := httpAdapter.NewRateLimiter(cfg.Upload.RateLimitPerMin, cfg.Upload.RateLimitBurst, appLogger)
	defer rateLimiter.Stop()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Upload:      httpAdapter.NewUploadHandler(uploadUseCase, cfg.App.PublicBaseURL, appLogger),
		Portfolio:   httpAdapter.NewPortfolioHandler(getUseCase, listUseCase, cfg.App.PublicBaseURL, uploadUseCase.MaxBytes(), appLogger),
		Parse:       httpAdapter.NewParseHandler(parseUseCase, appLogger),
		Auth:        httpAdapter.NewAuthHandler(loginUseCase, appLogger),
		JWT:         jwtSvc,
		RateLimiter: rateLimiter,
		Logger:      appLogger,

		TrustedProxies: cfg.App.TrustedProxies,
	})
	if err != nil {
		appLogger.Fatal("cannot build router", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
