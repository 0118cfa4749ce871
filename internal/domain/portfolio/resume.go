package portfolio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedResume = errors.New("malformed resume data")

// DefaultResume is shown when the parser output cannot be used.
func DefaultResume() Resume {
	return Resume{
		Name:    "Professional User",
		Title:   "Software Developer",
		Summary: "Dedicated software developer with experience in modern web technologies and a passion for creating efficient, user-friendly applications.",
		Skills: []string{
			"JavaScript", "React", "Node.js", "HTML5", "CSS3",
			"Git", "Problem Solving", "Team Collaboration", "Agile Development",
		},
		Experience: []Experience{
			{
				Company: "Technology Company",
				Role:    "Software Developer",
				Years:   "2022 - Present",
				Details: "Developed web applications using modern JavaScript frameworks. Collaborated with cross-functional teams to deliver high-quality software solutions.",
			},
		},
		Projects: []Project{
			{
				Name:        "Web Application",
				URL:         "https://github.com/user/web-app",
				Description: "Full-stack web application built with modern technologies and best practices.",
			},
		},
		ContactLinks: []ContactLink{
			{Type: "Email", URL: "mailto:user@example.com"},
			{Type: "LinkedIn", URL: "https://linkedin.com/in/user"},
			{Type: "GitHub", URL: "https://github.com/user"},
		},
		Education: []Education{},
	}
}

// DecodeResume turns raw parser output into a Resume. Models often wrap JSON
// in Markdown fences, those are removed first.
func DecodeResume(raw string) (*Resume, error) {
	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty output", ErrMalformedResume)
	}

	trimmed := []byte(cleaned)
	if !bytes.HasPrefix(trimmed, []byte("{")) {
		return nil, fmt.Errorf("%w: output is not a JSON object", ErrMalformedResume)
	}

	var r Resume
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResume, err)
	}
	r.Normalize()
	return &r, nil
}

func StripCodeFence(s string) string {
	clean := strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(clean, "```json"); ok {
		clean = rest
	} else if rest, ok := strings.CutPrefix(clean, "```"); ok {
		clean = rest
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

// Normalize trims text fields and replaces nil lists with empty ones so the
// record always renders with the same shape.
func (r *Resume) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Title = strings.TrimSpace(r.Title)
	r.Summary = strings.TrimSpace(r.Summary)

	skills := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	r.Skills = skills

	if r.Experience == nil {
		r.Experience = []Experience{}
	}
	if r.Projects == nil {
		r.Projects = []Project{}
	}
	if r.ContactLinks == nil {
		r.ContactLinks = []ContactLink{}
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
}

// HeroLinks are the contact links shown next to the name.
func (r Resume) HeroLinks() []ContactLink {
	if len(r.ContactLinks) <= 3 {
		return r.ContactLinks
	}
	return r.ContactLinks[:3]
}

// ContactIcon maps a free-form contact type to an icon name.
func ContactIcon(linkType string) string {
	t := strings.ToLower(linkType)
	switch {
	case strings.Contains(t, "email"), strings.Contains(t, "mail"):
		return "mail"
	case strings.Contains(t, "phone"):
		return "phone"
	case strings.Contains(t, "location"), strings.Contains(t, "address"):
		return "map-pin"
	case strings.Contains(t, "website"), strings.Contains(t, "portfolio"):
		return "globe"
	default:
		return "external-link"
	}
}

// DisplayURL drops the scheme so links read naturally on the page.
func DisplayURL(url string) string {
	for _, prefix := range []string{"mailto:", "https://", "http://"} {
		if rest, ok := strings.CutPrefix(url, prefix); ok {
			return rest
		}
	}
	return url
}
