package http

import (
	"time"

	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
)

type ExperienceDTO struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Years   string `json:"years"`
	Details string `json:"details"`
}

type ProjectDTO struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type ContactLinkDTO struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type EducationDTO struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year"`
}

// PortfolioDTO is the public view of a record. The raw file link stays with
// the uploader and the owner listing.
type PortfolioDTO struct {
	ID           string           `json:"id"`
	PageURL      string           `json:"page_url"`
	Name         string           `json:"name"`
	Title        string           `json:"title"`
	Summary      string           `json:"summary"`
	Skills       []string         `json:"skills"`
	Experience   []ExperienceDTO  `json:"experience"`
	Projects     []ProjectDTO     `json:"projects"`
	ContactLinks []ContactLinkDTO `json:"contact_links"`
	Education    []EducationDTO   `json:"education"`
	ParseStatus  string           `json:"parse_status"`
	CreatedAt    time.Time        `json:"created_at"`
}

type PortfolioSummaryDTO struct {
	ID          string    `json:"id"`
	PageURL     string    `json:"page_url"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	ParseStatus string    `json:"parse_status"`
	ResumeURL   string    `json:"resume_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type UploadResumeResponse struct {
	PortfolioID string `json:"portfolio_id"`
	Status      string `json:"status"`
	PageURL     string `json:"page_url"`
	ResumeURL   string `json:"resume_url"`
}

type parseResumeRequest struct {
	ResumeText string `json:"resumeText" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func pagePath(id string) string {
	return "/portfolio/" + id
}

func ToPortfolioDTO(p *portfolio.Portfolio, baseURL string) PortfolioDTO {
	r := p.Resume
	dto := PortfolioDTO{
		ID:          p.ID,
		PageURL:     baseURL + pagePath(p.ID),
		Name:        r.Name,
		Title:       r.Title,
		Summary:     r.Summary,
		Skills:      r.Skills,
		ParseStatus: string(p.ParseStatus),
		CreatedAt:   p.CreatedAt,
	}
	if dto.Skills == nil {
		dto.Skills = []string{}
	}

	dto.Experience = make([]ExperienceDTO, len(r.Experience))
	for i, e := range r.Experience {
		dto.Experience[i] = ExperienceDTO(e)
	}
	dto.Projects = make([]ProjectDTO, len(r.Projects))
	for i, pr := range r.Projects {
		dto.Projects[i] = ProjectDTO(pr)
	}
	dto.ContactLinks = make([]ContactLinkDTO, len(r.ContactLinks))
	for i, c := range r.ContactLinks {
		dto.ContactLinks[i] = ContactLinkDTO(c)
	}
	dto.Education = make([]EducationDTO, len(r.Education))
	for i, e := range r.Education {
		dto.Education[i] = EducationDTO(e)
	}
	return dto
}

func ToPortfolioSummaryDTO(p *portfolio.Portfolio, baseURL string) PortfolioSummaryDTO {
	return PortfolioSummaryDTO{
		ID:          p.ID,
		PageURL:     baseURL + pagePath(p.ID),
		Name:        p.Resume.Name,
		Title:       p.Resume.Title,
		ParseStatus: string(p.ParseStatus),
		ResumeURL:   p.ResumeURL,
		CreatedAt:   p.CreatedAt,
	}
}
