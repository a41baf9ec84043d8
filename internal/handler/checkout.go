package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service"
)

// CheckoutHandler handles HTTP requests for checkout session creation and
// payment verification.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// CreateSessionRequest is the HTTP request body for session creation.
// Amount arrives as a JSON number and is rounded to an integer minor unit.
type CreateSessionRequest struct {
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	CustomerName  string            `json:"customer_name"`
	ProductName   string            `json:"product_name"`
	Metadata      map[string]string `json:"metadata"`
}

// CreateSession handles POST /api/create-checkout-session
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request_body"})
		return
	}

	session, err := h.checkoutService.CreateSession(c.Request.Context(), domain.CheckoutRequest{
		Amount:        int64(math.Round(req.Amount)),
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		ProductName:   req.ProductName,
		Metadata:      req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, session)
}

// VerifyPayment handles GET /api/verify-payment/:sessionId
func (h *CheckoutHandler) VerifyPayment(c *gin.Context) {
	sessionID := c.Param("sessionId")

	verification, err := h.checkoutService.VerifyPayment(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, verification)
}
