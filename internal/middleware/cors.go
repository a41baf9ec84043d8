package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORSConfig controls the origin allow-list.
type CORSConfig struct {
	AllowedOrigins []string
	// Strict rejects requests without an Origin header outright; used in
	// production where every legitimate caller is a browser.
	Strict bool
}

// CORS returns middleware enforcing the configured origin allow-list.
// Unlisted origins get no CORS headers and a 403 so the failure is visible
// server-side as well as in the browser.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin == "" {
			if cfg.Strict {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin_not_allowed"})
				return
			}
			// Non-browser callers (curl, health probes) pass in development.
			c.Next()
			return
		}

		if _, ok := allowed[origin]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin_not_allowed"})
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key, X-Request-ID")
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
