package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves the liveness/info endpoints. No auth.
type HealthHandler struct {
	environment string
	startedAt   time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{
		environment: environment,
		startedAt:   time.Now(),
	}
}

// Root handles GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "Server is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.environment,
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).String(),
	})
}
