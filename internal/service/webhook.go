package service

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

// CompletedHook is invoked for verified checkout.session.completed events.
// It is the extension point for order fulfillment; dispatch itself performs
// no stateful write, so duplicate deliveries of the same event are safe.
type CompletedHook func(ctx context.Context, session *stripe.CheckoutSession)

// WebhookService verifies and dispatches processor webhook events.
type WebhookService struct {
	signingSecret string
	onCompleted   CompletedHook
	log           *zap.Logger
}

// NewWebhookService creates a new WebhookService. onCompleted may be nil.
func NewWebhookService(signingSecret string, onCompleted CompletedHook, log *zap.Logger) *WebhookService {
	return &WebhookService{
		signingSecret: signingSecret,
		onCompleted:   onCompleted,
		log:           log,
	}
}

// HandleEvent verifies the signature over the raw payload bytes and, only
// then, dispatches by event type. A payload that fails verification is
// discarded without interpreting a single field. Unrecognized event types
// are logged and ignored so new processor events never break the receiver.
func (s *WebhookService) HandleEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.signingSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		s.log.Warn("webhook signature verification failed", zap.Error(err))
		return ErrInvalidSignature
	}

	switch domain.WebhookEventType(event.Type) {
	case domain.EventCheckoutCompleted:
		s.handleCompleted(ctx, event)
	case domain.EventCheckoutExpired:
		s.log.Info("checkout session expired", zap.String("event_id", event.ID))
	case domain.EventPaymentFailed:
		s.log.Info("payment failed", zap.String("event_id", event.ID))
	default:
		s.log.Info("unhandled webhook event type",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
		)
	}

	return nil
}

func (s *WebhookService) handleCompleted(ctx context.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.log.Error("failed to unmarshal checkout session",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return
	}

	s.log.Info("payment succeeded",
		zap.String("event_id", event.ID),
		zap.String("session_id", session.ID),
	)

	if s.onCompleted != nil {
		s.onCompleted(ctx, &session)
	}
}
