package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/service"
)

// ErrorResponse represents an error response. The error field carries a
// stable reason string, never an internal detail.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError && !isKnownError(err) {
		// Unknown causes never leak to the caller.
		c.JSON(code, ErrorResponse{Error: "internal_error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrUnsupportedCurrency),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidProductName),
		errors.Is(err, service.ErrNameTooLong),
		errors.Is(err, service.ErrInvalidSessionID),
		errors.Is(err, service.ErrInvalidSignature):
		return http.StatusBadRequest

	// Upstream failures - generic internal error
	default:
		return http.StatusInternalServerError
	}
}

// isKnownError reports whether err is one of the enumerated reason errors
// whose message is part of the wire contract.
func isKnownError(err error) bool {
	return errors.Is(err, service.ErrCheckoutSessionFailed) ||
		errors.Is(err, service.ErrVerificationFailed)
}
