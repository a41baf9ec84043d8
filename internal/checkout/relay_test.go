package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

func testOrder() Order {
	items := []domain.CartItem{
		{ID: "p1", Name: "mug", Price: 10, Quantity: 2},
		{ID: "p2", Name: "pen", Price: 5, Quantity: 1},
	}
	return Order{
		Shipping: validShipping(),
		Items:    items,
		Totals:   cart.Compute(items),
	}
}

func TestRelayPayer_Success(t *testing.T) {
	t.Parallel()

	var verifyCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/create-checkout-session":
			var req domain.CheckoutRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad request body: %v", err)
			}
			// 25.00 subtotal + 9.99 shipping + 2.00 tax in minor units.
			if req.Amount != 3699 {
				t.Errorf("amount = %d, want 3699", req.Amount)
			}
			if req.CustomerName != "Jane Doe" {
				t.Errorf("customer name = %q", req.CustomerName)
			}
			if req.Metadata["cart_items_count"] != "2" {
				t.Errorf("metadata = %v", req.Metadata)
			}
			json.NewEncoder(w).Encode(domain.CheckoutSession{ID: "cs_test_relay"})

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/verify-payment/"):
			if got := strings.TrimPrefix(r.URL.Path, "/api/verify-payment/"); got != "cs_test_relay" {
				t.Errorf("verified session = %q", got)
			}
			status := domain.PaymentStatusUnpaid
			// Pays on the second poll.
			if atomic.AddInt32(&verifyCalls, 1) >= 2 {
				status = domain.PaymentStatusPaid
			}
			json.NewEncoder(w).Encode(domain.PaymentVerification{Status: status})

		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	var redirected string
	payer := NewRelayPayer(srv.URL, 5*time.Second, func(sessionID string) error {
		redirected = sessionID
		return nil
	}, zap.NewNop())
	payer.pollInterval = 10 * time.Millisecond

	result := payer.Pay(context.Background(), testOrder())
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v, err = %v", result.Outcome, result.Err)
	}
	if result.SessionID != "cs_test_relay" {
		t.Errorf("session id = %q", result.SessionID)
	}
	if redirected != "cs_test_relay" {
		t.Errorf("redirect callback got %q", redirected)
	}
	if got := atomic.LoadInt32(&verifyCalls); got < 2 {
		t.Errorf("verify calls = %d, want polling past unpaid", got)
	}
}

func TestRelayPayer_ServerRejectionSurfacesReason(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_amount"})
	}))
	defer srv.Close()

	payer := NewRelayPayer(srv.URL, 5*time.Second, nil, zap.NewNop())
	result := payer.Pay(context.Background(), testOrder())

	if result.Outcome != OutcomeError {
		t.Fatalf("outcome = %v", result.Outcome)
	}
	if result.Err == nil || !strings.Contains(result.Err.Error(), "invalid_amount") {
		t.Errorf("err = %v, want rejection reason", result.Err)
	}
}

func TestRelayPayer_CancelWhileAwaiting(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(domain.CheckoutSession{ID: "cs_test_wait"})
			return
		}
		json.NewEncoder(w).Encode(domain.PaymentVerification{Status: domain.PaymentStatusUnpaid})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	payer := NewRelayPayer(srv.URL, 5*time.Second, nil, zap.NewNop())
	payer.pollInterval = 10 * time.Millisecond

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	result := payer.Pay(ctx, testOrder())
	if result.Outcome != OutcomeCancelled {
		t.Errorf("outcome = %v, want cancelled on ctx cancel", result.Outcome)
	}
}

func TestBuildMetadata_ShippingAndItems(t *testing.T) {
	t.Parallel()

	order := testOrder()
	metadata := BuildMetadata(order.Shipping, order.Items, order.Totals)

	want := map[string]string{
		"shipping_firstName": "Jane",
		"shipping_email":     "a@b.co",
		"shipping_zipCode":   "12345",
		"order_total":        "36.99",
		"cart_items_count":   "2",
		"item_1_name":        "mug",
		"item_1_price":       "10.00",
		"item_1_quantity":    "2",
		"item_2_name":        "pen",
	}
	for key, value := range want {
		if metadata[key] != value {
			t.Errorf("metadata[%q] = %q, want %q", key, metadata[key], value)
		}
	}
}

func TestBuildMetadata_CapsItemsAndNames(t *testing.T) {
	t.Parallel()

	items := make([]domain.CartItem, 20)
	for i := range items {
		items[i] = domain.CartItem{ID: "p", Name: strings.Repeat("x", 600), Price: 1, Quantity: 1}
	}
	metadata := BuildMetadata(validShipping(), items, cart.Compute(items))

	if _, ok := metadata["item_15_name"]; !ok {
		t.Error("item_15 missing")
	}
	if _, ok := metadata["item_16_name"]; ok {
		t.Error("item_16 present, want cap at 15")
	}
	if got := len(metadata["item_1_name"]); got != 500 {
		t.Errorf("item name length = %d, want truncated to 500", got)
	}
	if metadata["cart_items_count"] != "20" {
		t.Errorf("cart_items_count = %q, want full count despite item cap", metadata["cart_items_count"])
	}
}
