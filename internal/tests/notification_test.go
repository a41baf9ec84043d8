package tests

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/service"
)

func TestNotification_OrderConfirmationContent(t *testing.T) {
	t.Parallel()

	sender := NewMockSender()
	svc := service.NewNotificationService(sender, zap.NewNop())

	shipping := domain.ShippingInfo{
		FirstName: "Jane", LastName: "Doe", Email: "a@b.co",
		Address: "1 Main St", City: "Springfield", ZipCode: "12345", Country: "United States",
	}
	items := []domain.CartItem{
		{ID: "p1", Name: "mug", Price: 10, Quantity: 2},
		{ID: "p2", Name: "pen", Price: 5, Quantity: 1},
	}
	totals := cart.Compute(items)

	require.NoError(t, svc.SendOrderConfirmation(context.Background(), shipping, items, totals))

	messages := sender.Messages()
	require.Len(t, messages, 1)
	msg := messages[0]

	assert.Equal(t, "a@b.co", msg.To)
	assert.Equal(t, "Your order confirmation", msg.Subject)
	assert.True(t, strings.Contains(msg.Body, "mug x2  $20.00"), "body: %s", msg.Body)
	assert.True(t, strings.Contains(msg.Body, "Total:    $36.99"), "body: %s", msg.Body)
	assert.True(t, strings.Contains(msg.Body, "Springfield 12345"), "body: %s", msg.Body)
}

func TestNotification_DeliveryFailureReturned(t *testing.T) {
	t.Parallel()

	sender := NewMockSender()
	sender.SendError = errors.New("connection refused")
	svc := service.NewNotificationService(sender, zap.NewNop())

	err := svc.SendOrderConfirmation(context.Background(), domain.ShippingInfo{Email: "a@b.co"}, nil, cart.Totals{})
	assert.Error(t, err)
}

func TestNotification_PaymentReceiptFormatsMinorUnits(t *testing.T) {
	t.Parallel()

	sender := NewMockSender()
	svc := service.NewNotificationService(sender, zap.NewNop())

	require.NoError(t, svc.SendPaymentReceipt(context.Background(), "a@b.co", 3699, "usd"))

	messages := sender.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Payment received", messages[0].Subject)
	assert.True(t, strings.Contains(messages[0].Body, "36.99 USD"), "body: %s", messages[0].Body)
}
