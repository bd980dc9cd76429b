package middleware

import (
	"os"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware adds CORS headers for browser clients. Allowed origins are
// configured via ALLOWED_ORIGIN (single origin or "*"); local
// development origins pass automatically outside release mode.
func CORSMiddleware() gin.HandlerFunc {
	isProduction := os.Getenv("GIN_MODE") == "release"
	configured := os.Getenv("ALLOWED_ORIGIN")

	devOrigins := map[string]bool{
		"http://localhost:3000": true,
		"http://127.0.0.1:3000": true,
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		isAllowed := origin == "" || origin == configured || configured == "*"
		if !isProduction && devOrigins[origin] {
			isAllowed = true
		}

		if isAllowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Header("Access-Control-Max-Age", "86400")
		}

		// Caches must differentiate by Origin.
		c.Header("Vary", "Origin")

		if c.Request.Method == "OPTIONS" {
			if isAllowed {
				c.AbortWithStatus(204)
			} else {
				c.AbortWithStatus(403)
			}
			return
		}

		c.Next()
	}
}
