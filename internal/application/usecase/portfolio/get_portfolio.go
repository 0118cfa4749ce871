package portfolio

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
	"github.com/khoahotran/portfolio-ai/pkg/metrics"
)

type GetPortfolioUseCase struct {
	portfolioRepo portfolio.Repository
	logger        logger.Logger
}

func NewGetPortfolioUseCase(repo portfolio.Repository, log logger.Logger) *GetPortfolioUseCase {
	return &GetPortfolioUseCase{portfolioRepo: repo, logger: log}
}

type GetPortfolioInput struct {
	ID string
}

type GetPortfolioOutput struct {
	Portfolio *portfolio.Portfolio
}

// Execute returns apperror NotFound for unknown and malformed ids alike, the
// public page treats both as "still being generated".
func (uc *GetPortfolioUseCase) Execute(ctx context.Context, input GetPortfolioInput) (*GetPortfolioOutput, error) {
	ctx, span := tracer.Start(ctx, "GetPortfolio")
	defer span.End()

	if !portfolio.ValidID(input.ID) {
		metrics.PortfolioViews.WithLabelValues(metrics.ViewNotFound).Inc()
		return nil, apperror.NewNotFound("portfolio", input.ID)
	}

	p, err := uc.portfolioRepo.FindByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			metrics.PortfolioViews.WithLabelValues(metrics.ViewNotFound).Inc()
		} else {
			span.RecordError(err)
		}
		return nil, err
	}

	metrics.PortfolioViews.WithLabelValues(metrics.ViewFound).Inc()
	return &GetPortfolioOutput{Portfolio: p}, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// deepest row a listing may start at; pages past it are empty
	maxListOffset = math.MaxInt32
)

type ListOwnerPortfoliosUseCase struct {
	portfolioRepo portfolio.Repository
	logger        logger.Logger
}

func NewListOwnerPortfoliosUseCase(repo portfolio.Repository, log logger.Logger) *ListOwnerPortfoliosUseCase {
	return &ListOwnerPortfoliosUseCase{portfolioRepo: repo, logger: log}
}

type ListOwnerPortfoliosInput struct {
	OwnerID uuid.UUID
	Page    int
	Limit   int
}

type ListOwnerPortfoliosOutput struct {
	Portfolios []*portfolio.Portfolio
	Page       int
	Limit      int
}

func (uc *ListOwnerPortfoliosUseCase) Execute(ctx context.Context, input ListOwnerPortfoliosInput) (*ListOwnerPortfoliosOutput, error) {
	ctx, span := tracer.Start(ctx, "ListOwnerPortfolios")
	defer span.End()

	if input.OwnerID == uuid.Nil {
		return nil, apperror.NewPermissionDenied("owner id is required")
	}
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit <= 0 {
		input.Limit = defaultPageSize
	}
	if input.Limit > maxPageSize {
		input.Limit = maxPageSize
	}

	if input.Page-1 > maxListOffset/input.Limit {
		return &ListOwnerPortfoliosOutput{Portfolios: []*portfolio.Portfolio{}, Page: input.Page, Limit: input.Limit}, nil
	}

	list, err := uc.portfolioRepo.ListByOwner(ctx, input.OwnerID, input.Limit, (input.Page-1)*input.Limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &ListOwnerPortfoliosOutput{Portfolios: list, Page: input.Page, Limit: input.Limit}, nil
}
