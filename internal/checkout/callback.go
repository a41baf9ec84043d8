package checkout

import (
	"context"
	"sync"
)

// Widget is a callback-style embedded payment widget: it reports through an
// onSuccess/onClose/onError callback trio rather than a return value.
type Widget interface {
	Open(order Order, onSuccess func(sessionID string), onClose func(), onError func(err error))
}

// WidgetPayer adapts a Widget to the Payer interface, collapsing the
// callback trio into a single discriminated result. Whichever callback
// fires first wins; later invocations are ignored, preserving the
// at-most-one-resolution guarantee.
type WidgetPayer struct {
	widget Widget
}

// NewWidgetPayer creates a WidgetPayer.
func NewWidgetPayer(widget Widget) *WidgetPayer {
	return &WidgetPayer{widget: widget}
}

// Pay opens the widget and blocks until it resolves or ctx is cancelled.
func (p *WidgetPayer) Pay(ctx context.Context, order Order) PaymentResult {
	var once sync.Once
	resultCh := make(chan PaymentResult, 1)

	resolve := func(result PaymentResult) {
		once.Do(func() { resultCh <- result })
	}

	p.widget.Open(order,
		func(sessionID string) {
			resolve(PaymentResult{Outcome: OutcomeSuccess, SessionID: sessionID})
		},
		func() {
			resolve(PaymentResult{Outcome: OutcomeCancelled})
		},
		func(err error) {
			resolve(PaymentResult{Outcome: OutcomeError, Err: err})
		},
	)

	select {
	case result := <-resultCh:
		return result
	case <-ctx.Done():
		return PaymentResult{Outcome: OutcomeCancelled}
	}
}

var _ Payer = (*WidgetPayer)(nil)
var _ Payer = (*RelayPayer)(nil)
