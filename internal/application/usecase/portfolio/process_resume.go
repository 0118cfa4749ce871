package portfolio

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/internal/application/service"
	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
	"github.com/khoahotran/portfolio-ai/pkg/metrics"
)

var tracer = otel.Tracer("portfolio_usecase")

var errEmptyResumeText = errors.New("no text could be extracted from the resume")

// ProcessResumeUseCase turns extracted text into a stored portfolio. It runs
// inline for sync uploads and from the worker for async ones.
type ProcessResumeUseCase struct {
	portfolioRepo portfolio.Repository
	parser        service.ResumeParser
	logger        logger.Logger
}

func NewProcessResumeUseCase(repo portfolio.Repository, parser service.ResumeParser, log logger.Logger) *ProcessResumeUseCase {
	return &ProcessResumeUseCase{portfolioRepo: repo, parser: parser, logger: log}
}

type ProcessResumeInput struct {
	PortfolioID string
	OwnerID     *uuid.UUID
	ResumeText  string
	ResumeURL   string
}

type ProcessResumeOutput struct {
	Portfolio *portfolio.Portfolio
}

func (uc *ProcessResumeUseCase) Execute(ctx context.Context, input ProcessResumeInput) (*ProcessResumeOutput, error) {
	ctx, span := tracer.Start(ctx, "ProcessResume")
	defer span.End()
	span.SetAttributes(attribute.String("portfolio_id", input.PortfolioID))

	log := uc.logger.With(zap.String("portfolio_id", input.PortfolioID))

	// redelivered events must not produce a second record
	existing, err := uc.portfolioRepo.FindByID(ctx, input.PortfolioID)
	if err == nil {
		log.Info("Portfolio already exists, skipping")
		return &ProcessResumeOutput{Portfolio: existing}, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		span.RecordError(err)
		return nil, err
	}

	resumeData, status := uc.parse(ctx, input.ResumeText, log)

	p := &portfolio.Portfolio{
		ID:          input.PortfolioID,
		OwnerID:     input.OwnerID,
		Resume:      resumeData,
		ParseStatus: status,
		ResumeURL:   input.ResumeURL,
		CreatedAt:   time.Now().UTC(),
	}

	if err := uc.portfolioRepo.Save(ctx, p); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			existing, findErr := uc.portfolioRepo.FindByID(ctx, input.PortfolioID)
			if findErr == nil {
				return &ProcessResumeOutput{Portfolio: existing}, nil
			}
		}
		log.Error("Failed to save portfolio", err)
		span.RecordError(err)
		return nil, err
	}

	metrics.ResumeParses.WithLabelValues(string(status)).Inc()
	span.SetAttributes(attribute.String("parse_status", string(status)))
	log.Info("Portfolio created", zap.String("parse_status", string(status)))
	return &ProcessResumeOutput{Portfolio: p}, nil
}

// parse never fails. Anything that keeps us from structured data, be it
// missing text, a transport error or malformed output, ends in the default
// profile.
func (uc *ProcessResumeUseCase) parse(ctx context.Context, text string, log logger.Logger) (portfolio.Resume, portfolio.ParseStatus) {
	if strings.TrimSpace(text) == "" {
		log.Warn("Using default resume data", zap.Error(errEmptyResumeText))
		return portfolio.DefaultResume(), portfolio.StatusFallback
	}

	parsed, err := uc.parser.ParseResume(ctx, text)
	if err != nil || parsed == nil {
		log.Warn("Resume parsing failed, using default resume data", zap.Error(err))
		return portfolio.DefaultResume(), portfolio.StatusFallback
	}

	parsed.Normalize()
	return *parsed, portfolio.StatusParsed
}
