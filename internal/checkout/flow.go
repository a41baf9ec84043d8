// Package checkout implements the client-side checkout flow: a two-step
// state machine (shipping, then payment) over the locally persisted cart
// and shipping info, ending in a terminal success or cancelled state.
package checkout

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/localstore"
)

// Step is the flow's current state.
type Step string

const (
	StepShipping  Step = "shipping"
	StepPayment   Step = "payment"
	StepSuccess   Step = "success"
	StepCancelled Step = "cancelled"
)

// Outcome discriminates a payment attempt's single resolution.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeCancelled
	OutcomeError
)

// PaymentResult is the discriminated result of one payment attempt.
type PaymentResult struct {
	Outcome   Outcome
	SessionID string
	Err       error
}

// Order is everything a payer needs to charge for the cart.
type Order struct {
	Shipping domain.ShippingInfo
	Items    []domain.CartItem
	Totals   cart.Totals
}

// Payer runs one payment attempt to completion. Implementations resolve
// exactly once: success, user-cancelled, or error.
type Payer interface {
	Pay(ctx context.Context, order Order) PaymentResult
}

// Notifier sends the best-effort order confirmation after payment.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, shipping domain.ShippingInfo, items []domain.CartItem, totals cart.Totals) error
}

var (
	// ErrMissingShippingFields is returned when a required shipping field
	// is empty.
	ErrMissingShippingFields = errors.New("missing required shipping fields")

	// ErrWrongStep is returned when an operation does not apply to the
	// flow's current step.
	ErrWrongStep = errors.New("operation not valid in current step")

	// ErrPaymentInFlight is returned when Pay is called while a previous
	// attempt is still resolving.
	ErrPaymentInFlight = errors.New("payment already in flight")

	// ErrEmptyCart is returned when the payment step finds no cart items.
	ErrEmptyCart = errors.New("cart is empty")
)

// Flow drives the checkout state machine.
type Flow struct {
	store    *localstore.Store
	payer    Payer
	notifier Notifier
	log      *zap.Logger

	mu      sync.Mutex
	step    Step
	loading bool
}

// NewFlow creates a flow in the shipping step.
func NewFlow(store *localstore.Store, payer Payer, notifier Notifier, log *zap.Logger) *Flow {
	return &Flow{
		store:    store,
		payer:    payer,
		notifier: notifier,
		log:      log,
		step:     StepShipping,
	}
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Loading reports whether a payment attempt is in flight.
func (f *Flow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Totals recomputes the price breakdown from the currently stored cart. It
// is never cached: any cart change is reflected on the next call.
func (f *Flow) Totals() (cart.Totals, error) {
	items, err := f.cartItems()
	if err != nil {
		return cart.Totals{}, err
	}
	return cart.Compute(items), nil
}

// SubmitShipping validates required fields, persists the shipping info
// under its well-known key, and advances to the payment step.
func (f *Flow) SubmitShipping(info domain.ShippingInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepShipping {
		return ErrWrongStep
	}
	if info.FirstName == "" || info.LastName == "" || info.Email == "" ||
		info.Address == "" || info.City == "" || info.ZipCode == "" {
		return ErrMissingShippingFields
	}

	if err := f.store.Set(localstore.KeyShippingInfo, info); err != nil {
		return err
	}

	f.step = StepPayment
	return nil
}

// Pay reads the stored shipping info and cart, computes totals, and runs
// the payer. On success the cart is cleared, a confirmation notification is
// attempted (failure logged, never blocking the success view), and the flow
// reaches its terminal success step. On user cancel the flow stays in the
// payment step with only the loading flag reset.
func (f *Flow) Pay(ctx context.Context) (Step, error) {
	f.mu.Lock()
	if f.step != StepPayment {
		f.mu.Unlock()
		return f.step, ErrWrongStep
	}
	if f.loading {
		f.mu.Unlock()
		return f.step, ErrPaymentInFlight
	}

	var shipping domain.ShippingInfo
	if err := f.store.Get(localstore.KeyShippingInfo, &shipping); err != nil {
		f.mu.Unlock()
		return f.step, err
	}
	items, err := f.cartItems()
	if err != nil {
		f.mu.Unlock()
		return f.step, err
	}
	if len(items) == 0 {
		f.mu.Unlock()
		return f.step, ErrEmptyCart
	}

	order := Order{
		Shipping: shipping,
		Items:    items,
		Totals:   cart.Compute(items),
	}
	f.loading = true
	f.mu.Unlock()

	result := f.payer.Pay(ctx, order)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false

	switch result.Outcome {
	case OutcomeSuccess:
		if err := f.store.Delete(localstore.KeyCart); err != nil {
			f.log.Warn("failed to clear cart after payment", zap.Error(err))
		}
		if f.notifier != nil {
			if err := f.notifier.SendOrderConfirmation(ctx, order.Shipping, order.Items, order.Totals); err != nil {
				f.log.Warn("order confirmation failed", zap.Error(err))
			}
		}
		f.step = StepSuccess
		return f.step, nil

	case OutcomeCancelled:
		// Stay on the payment step; only the loading indicator resets.
		return f.step, nil

	default:
		return f.step, result.Err
	}
}

// Abandon marks the flow cancelled. Reachable when the user walks away from
// the external payment step entirely.
func (f *Flow) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepSuccess {
		return
	}
	f.step = StepCancelled
	f.loading = false
}

// cartItems reads the stored cart; a missing key is an empty cart.
func (f *Flow) cartItems() ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := f.store.Get(localstore.KeyCart, &items); err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}
