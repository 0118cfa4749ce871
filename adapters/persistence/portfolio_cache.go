package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
	"github.com/khoahotran/portfolio-ai/pkg/metrics"
)

const portfolioCachePrefix = "portfolio:"

// cachedPortfolio is the Redis representation. Records never change after
// they are written, so entries only expire through the TTL.
type cachedPortfolio struct {
	ID          string           `json:"id"`
	OwnerID     *uuid.UUID       `json:"owner_id,omitempty"`
	Resume      portfolio.Resume `json:"resume"`
	ParseStatus string           `json:"parse_status"`
	ResumeURL   string           `json:"resume_url"`
	CreatedAt   time.Time        `json:"created_at"`
}

type cachedPortfolioRepo struct {
	next   portfolio.Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewCachedPortfolioRepo puts a Redis read-through cache in front of next.
// Redis failures are logged and the call goes straight to next.
func NewCachedPortfolioRepo(next portfolio.Repository, rdb *redis.Client, ttl time.Duration, logger logger.Logger) portfolio.Repository {
	return &cachedPortfolioRepo{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(id string) string {
	return portfolioCachePrefix + id
}

func (r *cachedPortfolioRepo) Save(ctx context.Context, p *portfolio.Portfolio) error {
	if err := r.next.Save(ctx, p); err != nil {
		return err
	}
	r.store(ctx, p)
	return nil
}

func (r *cachedPortfolioRepo) FindByID(ctx context.Context, id string) (*portfolio.Portfolio, error) {
	raw, err := r.rdb.Get(ctx, cacheKey(id)).Bytes()
	switch {
	case err == nil:
		var c cachedPortfolio
		jsonErr := json.Unmarshal(raw, &c)
		if jsonErr == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return fromCached(c), nil
		}
		r.logger.Warn("Dropping unreadable cache entry", zap.String("portfolio_id", id), zap.Error(jsonErr))
		r.rdb.Del(ctx, cacheKey(id))
	case errors.Is(err, redis.Nil):
	default:
		r.logger.Warn("Redis lookup failed, reading from database", zap.String("portfolio_id", id), zap.Error(err))
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	p, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, p)
	return p, nil
}

func (r *cachedPortfolioRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*portfolio.Portfolio, error) {
	return r.next.ListByOwner(ctx, ownerID, limit, offset)
}

func (r *cachedPortfolioRepo) store(ctx context.Context, p *portfolio.Portfolio) {
	b, err := json.Marshal(toCached(p))
	if err != nil {
		r.logger.Warn("Failed to marshal portfolio for cache", zap.String("portfolio_id", p.ID), zap.Error(err))
		return
	}
	if err := r.rdb.Set(ctx, cacheKey(p.ID), b, r.ttl).Err(); err != nil {
		r.logger.Warn("Failed to cache portfolio", zap.String("portfolio_id", p.ID), zap.Error(err))
	}
}

func toCached(p *portfolio.Portfolio) cachedPortfolio {
	return cachedPortfolio{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Resume:      p.Resume,
		ParseStatus: string(p.ParseStatus),
		ResumeURL:   p.ResumeURL,
		CreatedAt:   p.CreatedAt,
	}
}

func fromCached(c cachedPortfolio) *portfolio.Portfolio {
	p := &portfolio.Portfolio{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Resume:      c.Resume,
		ParseStatus: portfolio.ParseStatus(c.ParseStatus),
		ResumeURL:   c.ResumeURL,
		CreatedAt:   c.CreatedAt,
	}
	p.Resume.Normalize()
	return p
}
