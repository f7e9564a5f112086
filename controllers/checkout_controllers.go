package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asing407/foodie-barcart/services"
	"github.com/asing407/foodie-barcart/utils"
)

type CheckoutController struct {
	service *services.CheckoutService
}

func NewCheckoutController(service *services.CheckoutService) *CheckoutController {
	return &CheckoutController{service: service}
}

// CreateCheckout accepts a cart payload and returns the hosted payment
// page URL. The response shape is {"url": ...} on success and
// {"error": ..., "details": ...} otherwise, which is what the
// storefront expects.
func (cc *CheckoutController) CreateCheckout(c *gin.Context) {
	var req struct {
		CartItems []services.CartItem `json:"cartItems"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid cart items",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetString("user_id")
	userEmail := c.GetString("user_email")

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = "http://" + c.Request.Host
	}

	url, err := cc.service.CreateCheckout(c.Request.Context(), req.CartItems, userID, userEmail, origin)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, services.ErrInvalidCart):
			status = http.StatusBadRequest
		case errors.Is(err, services.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, services.ErrGateway):
			status = http.StatusBadGateway
		}
		utils.ErrorLogger.Printf("Checkout failed for user %s: %v", userID, err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
