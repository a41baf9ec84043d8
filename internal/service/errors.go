package service

import "errors"

var (
	// ErrInvalidAmount is returned when the amount is missing, zero,
	// negative, or above the processor ceiling.
	ErrInvalidAmount = errors.New("invalid_amount")

	// ErrUnsupportedCurrency is returned when the currency is not on the
	// allow-list.
	ErrUnsupportedCurrency = errors.New("unsupported_currency")

	// ErrInvalidEmail is returned when the customer email is malformed or
	// too long.
	ErrInvalidEmail = errors.New("invalid_email")

	// ErrInvalidProductName is returned when the product name is missing or
	// too long.
	ErrInvalidProductName = errors.New("invalid_product_name")

	// ErrNameTooLong is returned when the optional customer name exceeds
	// its limit.
	ErrNameTooLong = errors.New("name_too_long")

	// ErrInvalidSessionID is returned when a session id lacks the
	// processor's prefix.
	ErrInvalidSessionID = errors.New("invalid_session_id")

	// ErrSessionNotFound is returned when the processor does not know the
	// session id.
	ErrSessionNotFound = errors.New("session_not_found")

	// ErrCheckoutSessionFailed is the generic upstream failure for session
	// creation. The underlying cause is logged, never sent to the caller.
	ErrCheckoutSessionFailed = errors.New("checkout_session_failed")

	// ErrVerificationFailed is the generic upstream failure for payment
	// verification.
	ErrVerificationFailed = errors.New("verification_failed")

	// ErrInvalidSignature is returned when a webhook payload fails
	// signature verification.
	ErrInvalidSignature = errors.New("invalid_signature")
)
