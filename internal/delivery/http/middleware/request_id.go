package middleware

import (
	"go-matchmaking-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID attaches a unique id to every request for log correlation.
// An inbound X-Request-ID header is honored so ids survive proxies.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Request.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(string(domain.KeyRequestID), id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
