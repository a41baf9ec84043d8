// Package payments wraps the Stripe API behind the service layer's
// PaymentProvider interface.
package payments

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"

	"storefront/internal/domain"
	"storefront/internal/service"
)

// StripeProvider creates and retrieves hosted checkout sessions. It is an
// explicitly constructed client rather than the package-global stripe.Key,
// so tests and multiple configurations can coexist.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a provider with a bounded request timeout on
// every outbound call.
func NewStripeProvider(secretKey string, timeout time.Duration) *StripeProvider {
	backends := stripe.NewBackends(&http.Client{Timeout: timeout})
	return &StripeProvider{api: client.New(secretKey, backends)}
}

// CreateCheckoutSession creates a hosted checkout session: card payments,
// one line item at single quantity, payment mode, processor-enforced expiry.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params service.CreateSessionParams) (string, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(params.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.ProductName),
					},
					UnitAmount: stripe.Int64(params.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(params.CustomerEmail),
		SuccessURL:    stripe.String(params.SuccessURL),
		CancelURL:     stripe.String(params.CancelURL),
		ExpiresAt:     stripe.Int64(params.ExpiresAt.Unix()),
	}
	sessionParams.Context = ctx
	for key, value := range params.Metadata {
		sessionParams.AddMetadata(key, value)
	}

	sess, err := p.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

// RetrieveSession fetches the processor's view of a session. An unknown id
// maps to service.ErrSessionNotFound; other failures pass through for the
// service layer to log and translate.
func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*domain.PaymentVerification, error) {
	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx

	sess, err := p.api.CheckoutSessions.Get(sessionID, getParams)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			return nil, service.ErrSessionNotFound
		}
		return nil, err
	}

	return &domain.PaymentVerification{
		Status:        string(sess.PaymentStatus),
		CustomerEmail: sess.CustomerEmail,
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
	}, nil
}

var _ service.PaymentProvider = (*StripeProvider)(nil)
