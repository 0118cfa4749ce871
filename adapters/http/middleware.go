package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/pkg/apperror"
	"github.com/khoahotran/portfolio-ai/pkg/auth"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

const (
	GinContextKeyUserID = "userID"
)

func AuthMiddleware(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Error(apperror.NewUnauthorized("authorization header is required", nil))
			c.Abort()
			return
		}
		if !authenticate(c, jwtSvc, header, log) {
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware lets anonymous requests through but still rejects
// a token that is present and invalid.
func OptionalAuthMiddleware(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		if !authenticate(c, jwtSvc, header, log) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtSvc *auth.JWTService, header string, log logger.Logger) bool {
	token, err := auth.BearerToken(header)
	if err != nil {
		c.Error(apperror.NewUnauthorized("invalid token format", err))
		c.Abort()
		return false
	}

	claims, err := jwtSvc.ValidateToken(token)
	if err != nil {
		log.Warn("Rejected token", zap.String("path", c.FullPath()), zap.Error(err))
		c.Error(apperror.NewUnauthorized("invalid or expired token", err))
		c.Abort()
		return false
	}

	c.Set(GinContextKeyUserID, claims.UserID)
	return true
}

func GetUserIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(GinContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return id, true
}

// ErrorMiddleware renders the last error a handler attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("unhandled error", err)
		}

		status := apperror.ToHTTPStatus(appErr)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
		}
		if status >= http.StatusInternalServerError {
			log.Error(appErr.Message, err, fields...)
		} else {
			log.Warn(appErr.Message, append(fields, zap.String("details", appErr.Details))...)
		}

		c.JSON(status, appErr.ToJSON())
	}
}
