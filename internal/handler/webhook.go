package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/service"
)

// WebhookHandler receives processor webhook notifications.
type WebhookHandler struct {
	webhookService *service.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// Receive handles POST /api/webhook. The handler reads the raw byte stream
// itself; signature verification is over the unmodified body, so no body
// parsing may happen before it. Once the signature verifies, the response
// is always 200 {received: true} regardless of event type, so the processor
// does not retry indefinitely.
func (h *WebhookHandler) Receive(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_payload"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.webhookService.HandleEvent(c.Request.Context(), payload, signature); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"received": true})
}
