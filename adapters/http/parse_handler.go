package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portfolio-ai/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

type ParseHandler struct {
	parseUC *portfolioUC.ParseResumeTextUseCase
	logger  logger.Logger
}

func NewParseHandler(parseUC *portfolioUC.ParseResumeTextUseCase, log logger.Logger) *ParseHandler {
	return &ParseHandler{parseUC: parseUC, logger: log}
}

// ParseResume returns the structured resume for posted text. Nothing is
// stored.
func (h *ParseHandler) ParseResume(c *gin.Context) {
	var req parseResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("'resumeText' is required", err))
		return
	}

	out, err := h.parseUC.Execute(c.Request.Context(), portfolioUC.ParseResumeTextInput{ResumeText: req.ResumeText})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out.Resume)
}
