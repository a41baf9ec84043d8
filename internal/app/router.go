package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"

	"storefront/internal/handler"
	"storefront/internal/logger"
	"storefront/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	CheckoutHandler *handler.CheckoutHandler
	WebhookHandler  *handler.WebhookHandler
	HealthHandler   *handler.HealthHandler

	// Limiter may be nil, disabling admission control (tests).
	Limiter       middleware.Limiter
	GeneralLimit  int
	CheckoutLimit int
	LimitWindow   time.Duration

	// IdempotencyCache may be nil, disabling idempotent-response replay.
	IdempotencyCache middleware.ResponseCache

	CORS        middleware.CORSConfig
	NewRelicApp *newrelic.Application
	Logger      *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered. The
// webhook route sits behind no body-touching middleware: its handler must
// see the raw byte stream for signature verification.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger(deps.Logger))
	router.Use(middleware.CORS(deps.CORS))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// General admission control: all routes, webhook included.
	if deps.Limiter != nil {
		router.Use(middleware.RateLimit(deps.Limiter, "general", deps.GeneralLimit, deps.LimitWindow, deps.Logger))
	}

	// Liveness.
	router.GET("/", deps.HealthHandler.Root)
	router.GET("/health", deps.HealthHandler.Health)

	// API routes.
	api := router.Group("/api")
	{
		create := api.Group("/create-checkout-session")
		{
			// Tighter per-IP limit on session creation, checked before
			// validation or any processor call.
			if deps.Limiter != nil {
				create.Use(middleware.RateLimit(deps.Limiter, "checkout", deps.CheckoutLimit, deps.LimitWindow, deps.Logger))
			}
			if deps.IdempotencyCache != nil {
				create.Use(middleware.Idempotency(deps.IdempotencyCache))
			}
			create.POST("", deps.CheckoutHandler.CreateSession)
		}

		api.GET("/verify-payment/:sessionId", deps.CheckoutHandler.VerifyPayment)
		api.POST("/webhook", deps.WebhookHandler.Receive)
	}

	// Uniform JSON 404 for unmatched routes.
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint_not_found"})
	})

	return router
}
