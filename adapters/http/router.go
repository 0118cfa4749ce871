package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khoahotran/portfolio-ai/pkg/auth"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

type RouterDeps struct {
	Upload      *UploadHandler
	Portfolio   *PortfolioHandler
	Parse       *ParseHandler
	Auth        *AuthHandler
	JWT         *auth.JWTService
	RateLimiter *RateLimiter
	Logger      logger.Logger

	// TrustedProxies may set X-Forwarded-For. Nil trusts none, so the
	// rate limiter keys on the connection's peer address.
	TrustedProxies []string
}

func NewRouter(d RouterDeps) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	if err := router.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(ErrorMiddleware(d.Logger))
	router.SetHTMLTemplate(tmpl)

	authMiddleware := AuthMiddleware(d.JWT, d.Logger)
	optionalAuth := OptionalAuthMiddleware(d.JWT, d.Logger)
	uploadLimit := d.RateLimiter.Middleware()

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", d.Portfolio.Index)
	router.POST("/upload", d.Upload.FormErrorPage, uploadLimit, d.Upload.UploadResumeForm)
	router.GET("/portfolio/:id", d.Portfolio.ShowPortfolio)

	api := router.Group("/api")
	{
		api.POST("/auth/login", d.Auth.Login)

		api.POST("/resumes", uploadLimit, optionalAuth, d.Upload.UploadResume)
		api.POST("/parse-resume", uploadLimit, d.Parse.ParseResume)
		api.GET("/portfolios/:id", d.Portfolio.GetPortfolio)

		me := api.Group("/me")
		me.Use(authMiddleware)
		{
			me.GET("/portfolios", d.Portfolio.ListMyPortfolios)
		}
	}

	return router, nil
}
