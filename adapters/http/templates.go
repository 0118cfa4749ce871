package http

import (
	"embed"
	"html/template"

	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
)

const (
	tmplIndex       = "index.html"
	tmplPortfolio   = "portfolio.html"
	tmplPlaceholder = "placeholder.html"
)

//go:embed templates/*.html
var templateFS embed.FS

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"contactIcon": portfolio.ContactIcon,
		"displayURL":  portfolio.DisplayURL,
	}
}

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
}
