package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"go-matchmaking-backend/internal/delivery/http/response"
	"go-matchmaking-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders errors pushed onto the gin context. Known AppErrors
// map to their status code; anything else becomes an opaque 500 so internal
// details never leak to clients.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				if appErr.Code >= http.StatusInternalServerError {
					log.Error("request failed", "path", c.Request.URL.Path, "status", appErr.Code, "error", err)
				}
				response.Error(c, appErr.Code, appErr.Message, nil)
			} else {
				log.Error("unexpected error", "path", c.Request.URL.Path, "error", err)
				response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			}
		}
	}
}
