package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

// Metadata limits mirrored client-side; the relay enforces the same caps
// before the processor call.
const (
	maxMetadataItems   = 15
	maxItemNameLength  = 500
	defaultProductName = "Order from Your Store"
)

// RelayPayer pays through the relay server's hosted-checkout flow: create a
// session, hand the redirect to the caller, then poll verification until
// the processor reports the session paid.
type RelayPayer struct {
	serverURL    string
	httpClient   *http.Client
	redirect     func(sessionID string) error
	pollInterval time.Duration
	log          *zap.Logger
}

// NewRelayPayer creates a RelayPayer. redirect receives the created session
// id so the caller can open the processor's hosted page; it may be nil.
func NewRelayPayer(serverURL string, timeout time.Duration, redirect func(sessionID string) error, log *zap.Logger) *RelayPayer {
	return &RelayPayer{
		serverURL:    serverURL,
		httpClient:   &http.Client{Timeout: timeout},
		redirect:     redirect,
		pollInterval: 2 * time.Second,
		log:          log,
	}
}

// Pay resolves exactly once: success when verification reports the session
// paid, cancelled when ctx is cancelled while waiting, error otherwise.
func (p *RelayPayer) Pay(ctx context.Context, order Order) PaymentResult {
	req := domain.CheckoutRequest{
		Amount:        cart.MinorUnits(order.Totals.Total),
		Currency:      "usd",
		CustomerEmail: order.Shipping.Email,
		CustomerName:  order.Shipping.FirstName + " " + order.Shipping.LastName,
		ProductName:   defaultProductName,
		Metadata:      BuildMetadata(order.Shipping, order.Items, order.Totals),
	}

	sessionID, err := p.createSession(ctx, req)
	if err != nil {
		return PaymentResult{Outcome: OutcomeError, Err: err}
	}

	if p.redirect != nil {
		if err := p.redirect(sessionID); err != nil {
			return PaymentResult{Outcome: OutcomeError, SessionID: sessionID, Err: err}
		}
	}

	return p.awaitPayment(ctx, sessionID)
}

// createSession posts the checkout request to the relay.
func (p *RelayPayer) createSession(ctx context.Context, req domain.CheckoutRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.serverURL+"/api/create-checkout-session", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("create checkout session failed: %s", apiErr.Error)
	}

	var session domain.CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", err
	}
	return session.ID, nil
}

// awaitPayment polls the verification endpoint. An unpaid status is not an
// error; the session simply is not finalized yet.
func (p *RelayPayer) awaitPayment(ctx context.Context, sessionID string) PaymentResult {
	p.log.Info("awaiting payment confirmation", zap.String("session_id", sessionID))

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// The only cancellation path: the user closed the payment step.
			return PaymentResult{Outcome: OutcomeCancelled, SessionID: sessionID}
		case <-ticker.C:
			verification, err := p.verify(ctx, sessionID)
			if err != nil {
				return PaymentResult{Outcome: OutcomeError, SessionID: sessionID, Err: err}
			}
			if verification.Status == domain.PaymentStatusPaid {
				return PaymentResult{Outcome: OutcomeSuccess, SessionID: sessionID}
			}
		}
	}
}

// verify fetches the relay's verification projection for the session.
func (p *RelayPayer) verify(ctx context.Context, sessionID string) (*domain.PaymentVerification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.serverURL+"/api/verify-payment/"+sessionID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verify payment returned status %d", resp.StatusCode)
	}

	var verification domain.PaymentVerification
	if err := json.NewDecoder(resp.Body).Decode(&verification); err != nil {
		return nil, err
	}
	return &verification, nil
}

// BuildMetadata assembles the processor metadata embedded with a session:
// shipping fields, order total, and up to 15 cart items with names
// truncated to the processor's value limit.
func BuildMetadata(shipping domain.ShippingInfo, items []domain.CartItem, totals cart.Totals) map[string]string {
	metadata := map[string]string{
		"shipping_firstName": shipping.FirstName,
		"shipping_lastName":  shipping.LastName,
		"shipping_email":     shipping.Email,
		"shipping_address":   shipping.Address,
		"shipping_city":      shipping.City,
		"shipping_zipCode":   shipping.ZipCode,
		"shipping_country":   shipping.Country,
		"order_total":        strconv.FormatFloat(totals.Total, 'f', 2, 64),
		"cart_items_count":   strconv.Itoa(len(items)),
	}

	for i, item := range items {
		if i >= maxMetadataItems {
			break
		}
		name := item.Name
		if len(name) > maxItemNameLength {
			cut := maxItemNameLength
			for cut > 0 && !utf8.RuneStart(name[cut]) {
				cut--
			}
			name = name[:cut]
		}
		prefix := "item_" + strconv.Itoa(i+1)
		metadata[prefix+"_name"] = name
		metadata[prefix+"_price"] = strconv.FormatFloat(item.Price, 'f', 2, 64)
		metadata[prefix+"_quantity"] = strconv.Itoa(item.Quantity)
	}

	return metadata
}
