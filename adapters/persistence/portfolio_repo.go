package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

const uniqueViolation = "23505"

const portfolioColumns = "id, owner_id, name, title, summary, skills, experience, projects, contact_links, education, parse_status, resume_url, created_at"

type postgresPortfolioRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresPortfolioRepo(db *pgxpool.Pool, logger logger.Logger) portfolio.Repository {
	return &postgresPortfolioRepo{db: db, logger: logger}
}

var psqlPortfolio = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// decodeList reads a JSONB list column. Anything that is not a JSON array is
// logged and read back as an empty list, the page still renders.
func decodeList[T any](raw []byte, column, id string, l logger.Logger) []T {
	out := []T{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out
	}
	if trimmed[0] != '[' {
		l.Warn("Portfolio column is not an array", zap.String("portfolio_id", id), zap.String("column", column))
		return out
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		l.Warn("Failed to unmarshal portfolio column", zap.String("portfolio_id", id), zap.String("column", column), zap.Error(err))
		return []T{}
	}
	return out
}

func scanPortfolio(row pgx.Row, l logger.Logger) (*portfolio.Portfolio, error) {
	p := &portfolio.Portfolio{}
	var (
		skills, experience, projects, contacts, education []byte
		status                                            string
	)

	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Resume.Name,
		&p.Resume.Title,
		&p.Resume.Summary,
		&skills,
		&experience,
		&projects,
		&contacts,
		&education,
		&status,
		&p.ResumeURL,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("portfolio", "")
		}
		return nil, apperror.NewInternal("failed to scan portfolio row", err)
	}

	p.ParseStatus = portfolio.ParseStatus(status)
	p.Resume.Skills = decodeList[string](skills, "skills", p.ID, l)
	p.Resume.Experience = decodeList[portfolio.Experience](experience, "experience", p.ID, l)
	p.Resume.Projects = decodeList[portfolio.Project](projects, "projects", p.ID, l)
	p.Resume.ContactLinks = decodeList[portfolio.ContactLink](contacts, "contact_links", p.ID, l)
	p.Resume.Education = decodeList[portfolio.Education](education, "education", p.ID, l)

	return p, nil
}

func scanPortfolios(rows pgx.Rows, l logger.Logger) ([]*portfolio.Portfolio, error) {
	defer rows.Close()
	portfolios := make([]*portfolio.Portfolio, 0)

	for rows.Next() {
		p, err := scanPortfolio(rows, l)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating portfolio rows", err)
	}
	return portfolios, nil
}

func marshalLists(r portfolio.Resume) ([][]byte, error) {
	values := []any{r.Skills, r.Experience, r.Projects, r.ContactLinks, r.Education}
	out := make([][]byte, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// Save inserts the record. Portfolios are never updated, a second save of
// the same id is a conflict.
func (r *postgresPortfolioRepo) Save(ctx context.Context, p *portfolio.Portfolio) error {
	lists, err := marshalLists(p.Resume)
	if err != nil {
		return apperror.NewInternal("failed to marshal portfolio lists", err)
	}

	query := `
		INSERT INTO portfolios (id, owner_id, name, title, summary, skills, experience, projects, contact_links, education, parse_status, resume_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.Exec(ctx, query,
		p.ID, p.OwnerID, p.Resume.Name, p.Resume.Title, p.Resume.Summary,
		lists[0], lists[1], lists[2], lists[3], lists[4],
		string(p.ParseStatus), p.ResumeURL, p.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.NewConflict("portfolio", "id", p.ID)
		}
		return apperror.NewInternal("failed to save portfolio", err)
	}
	return nil
}

func (r *postgresPortfolioRepo) FindByID(ctx context.Context, id string) (*portfolio.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE id = $1`
	p, err := scanPortfolio(r.db.QueryRow(ctx, query, id), r.logger)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NewNotFound("portfolio", id)
	}
	return p, err
}

func (r *postgresPortfolioRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*portfolio.Portfolio, error) {
	builder := psqlPortfolio.Select(portfolioColumns).
		From("portfolios").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list by owner query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query portfolios by owner", err)
	}
	return scanPortfolios(rows, r.logger)
}
