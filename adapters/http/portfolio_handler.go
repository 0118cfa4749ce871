package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portfolioUC "github.com/khoahotran/portfolio-ai/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-ai/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-ai/internal/domain/resume"
	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

type PortfolioHandler struct {
	getUC   *portfolioUC.GetPortfolioUseCase
	listUC  *portfolioUC.ListOwnerPortfoliosUseCase
	baseURL string
	maxSize string
	logger  logger.Logger
}

func NewPortfolioHandler(
	getUC *portfolioUC.GetPortfolioUseCase,
	listUC *portfolioUC.ListOwnerPortfoliosUseCase,
	baseURL string,
	maxBytes int64,
	log logger.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		getUC:   getUC,
		listUC:  listUC,
		baseURL: baseURL,
		maxSize: resume.SizeLabel(maxBytes),
		logger:  log,
	}
}

func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	out, err := h.getUC.Execute(c.Request.Context(), portfolioUC.GetPortfolioInput{ID: c.Param("id")})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToPortfolioDTO(out.Portfolio, h.baseURL))
}

func (h *PortfolioHandler) ListMyPortfolios(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("user id not found in context"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	out, err := h.listUC.Execute(c.Request.Context(), portfolioUC.ListOwnerPortfoliosInput{
		OwnerID: userID,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		c.Error(err)
		return
	}

	dtos := make([]PortfolioSummaryDTO, len(out.Portfolios))
	for i, p := range out.Portfolios {
		dtos[i] = ToPortfolioSummaryDTO(p, h.baseURL)
	}
	c.JSON(http.StatusOK, gin.H{"items": dtos, "page": out.Page, "limit": out.Limit})
}

type indexView struct {
	MaxSize     string
	ErrorTitle  string
	ErrorDetail string
}

type portfolioView struct {
	Resume   portfolio.Resume
	Fallback bool
}

type placeholderView struct {
	Refresh bool
}

func (h *PortfolioHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, tmplIndex, indexView{MaxSize: h.maxSize})
}

// ShowPortfolio renders the public page. A missing record is the normal
// state while generation runs, so it gets the placeholder instead of an
// error page.
func (h *PortfolioHandler) ShowPortfolio(c *gin.Context) {
	out, err := h.getUC.Execute(c.Request.Context(), portfolioUC.GetPortfolioInput{ID: c.Param("id")})
	if err != nil {
		status := http.StatusNotFound
		if !errors.Is(err, apperror.ErrNotFound) {
			h.logger.Error("Failed to load portfolio page", err)
			status = http.StatusInternalServerError
		}
		c.HTML(status, tmplPlaceholder, placeholderView{Refresh: status == http.StatusNotFound})
		return
	}

	c.HTML(http.StatusOK, tmplPortfolio, portfolioView{
		Resume:   out.Portfolio.Resume,
		Fallback: out.Portfolio.ParseStatus == portfolio.StatusFallback,
	})
}
