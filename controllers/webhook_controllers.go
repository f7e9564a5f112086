package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asing407/foodie-barcart/gateway"
	"github.com/asing407/foodie-barcart/services"
	"github.com/asing407/foodie-barcart/utils"
)

type WebhookController struct {
	reconciler *services.ReconcilerService
}

func NewWebhookController(reconciler *services.ReconcilerService) *WebhookController {
	return &WebhookController{reconciler: reconciler}
}

// HandleStripeWebhook receives payment-outcome events. Verification or
// correlation failures answer 400 and mutate nothing; processing
// failures answer 500 so Stripe redelivers, which the reconciler's
// idempotency makes safe. Everything else, including deliberate no-ops,
// is acknowledged with {"received": true}.
func (wc *WebhookController) HandleStripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	if err := wc.reconciler.HandleEvent(c.Request.Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, gateway.ErrSignature):
			utils.ErrorLogger.Printf("Webhook rejected: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "webhook signature verification failed"})
		case errors.Is(err, gateway.ErrNoOrderRef):
			utils.ErrorLogger.Printf("Webhook rejected: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "no order id found in event metadata"})
		default:
			utils.ErrorLogger.Printf("Webhook processing failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
