package domain

// CheckoutRequest is a request to create a hosted checkout session with the
// payment processor. Amount is in minor currency units (cents).
type CheckoutRequest struct {
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	CustomerName  string            `json:"customer_name,omitempty"`
	ProductName   string            `json:"product_name"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// CheckoutSession is the processor-issued handle for one attempted purchase.
// The processor enforces its 30-minute lifetime; this system never mutates it.
type CheckoutSession struct {
	ID string `json:"sessionId"`
}

// PaymentVerification is a read projection of processor-held payment state.
type PaymentVerification struct {
	Status        string `json:"status"`
	CustomerEmail string `json:"customer_email"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

// PaymentStatus values reported by the processor for a checkout session.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// WebhookEventType identifies a processor lifecycle notification. The set is
// open: unrecognized types are logged and ignored.
type WebhookEventType string

const (
	EventCheckoutCompleted WebhookEventType = "checkout.session.completed"
	EventCheckoutExpired   WebhookEventType = "checkout.session.expired"
	EventPaymentFailed     WebhookEventType = "payment_intent.payment_failed"
)
