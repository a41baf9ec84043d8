package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/payments"
	internalRedis "storefront/internal/redis"
	"storefront/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so downstream clients can be instrumented.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			zlog.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			zlog.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	// Initialize Redis with New Relic instrumentation. It backs admission
	// control and idempotent-response replay.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	zlog.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	if cfg.Stripe.SecretKey == "" {
		zlog.Fatal("STRIPE_SECRET_KEY is required")
	}

	// Wire dependencies.
	server := wireServer(redisClient, nrApp, cfg, zlog)

	// Start server in goroutine.
	go func() {
		zlog.Info("starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("environment", cfg.Environment),
			zap.String("frontend", cfg.CORS.FrontendDomain),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, zlog *zap.Logger) *http.Server {
	// Payment provider.
	provider := payments.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.RequestTimeout)

	// Notifications: real SMTP when configured, log-only otherwise.
	var sender service.Sender
	if cfg.SMTP.Host != "" {
		sender = service.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	} else {
		sender = service.NewLogSender(zlog)
	}
	notifications := service.NewNotificationService(sender, zlog)

	// Services.
	checkoutService := service.NewCheckoutService(provider, cfg.CORS.FrontendDomain, cfg.Stripe.SessionExpiry, zlog)
	webhookService := service.NewWebhookService(cfg.Stripe.WebhookSecret,
		func(ctx context.Context, sess *stripe.CheckoutSession) {
			// Best-effort receipt; webhook acknowledgment never depends on it.
			if sess.CustomerEmail != "" {
				_ = notifications.SendPaymentReceipt(ctx, sess.CustomerEmail, sess.AmountTotal, string(sess.Currency))
			}
		}, zlog)

	// Handlers.
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	webhookHandler := handler.NewWebhookHandler(webhookService)
	healthHandler := handler.NewHealthHandler(cfg.Environment)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		CheckoutHandler:  checkoutHandler,
		WebhookHandler:   webhookHandler,
		HealthHandler:    healthHandler,
		Limiter:          internalRedis.NewRateLimitStore(redisClient),
		GeneralLimit:     cfg.RateLimit.GeneralLimit,
		CheckoutLimit:    cfg.RateLimit.CheckoutLimit,
		LimitWindow:      cfg.RateLimit.Window,
		IdempotencyCache: redisClient,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.AllowedOrigins(),
			Strict:         cfg.IsProduction(),
		},
		NewRelicApp: nrApp,
		Logger:      zlog,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
