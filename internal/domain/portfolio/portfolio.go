package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ParseStatus string

const (
	StatusParsed   ParseStatus = "parsed"
	StatusFallback ParseStatus = "fallback"
)

type Experience struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Years   string `json:"years"`
	Details string `json:"details"`
}

type Project struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type ContactLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year"`
}

// Resume is the structured content pulled out of an uploaded resume. The
// JSON tags match the shape the parser is asked to return.
type Resume struct {
	Name         string        `json:"name"`
	Title        string        `json:"title"`
	Summary      string        `json:"summary"`
	Skills       []string      `json:"skills"`
	Experience   []Experience  `json:"experience"`
	Projects     []Project     `json:"projects"`
	ContactLinks []ContactLink `json:"contactLinks"`
	Education    []Education   `json:"education,omitempty"`
}

// Portfolio is the persisted record behind a public page. It is written once
// and never modified afterwards.
type Portfolio struct {
	ID          string
	OwnerID     *uuid.UUID
	Resume      Resume
	ParseStatus ParseStatus
	ResumeURL   string
	CreatedAt   time.Time
}

type Repository interface {
	Save(ctx context.Context, p *Portfolio) error
	FindByID(ctx context.Context, id string) (*Portfolio, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Portfolio, error)
}
