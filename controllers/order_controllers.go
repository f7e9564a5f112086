package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asing407/foodie-barcart/models"
	"github.com/asing407/foodie-barcart/services"
	"github.com/asing407/foodie-barcart/store"
	"github.com/asing407/foodie-barcart/utils"
)

type OrderController struct {
	store *store.OrderStore
	email *services.EmailService
}

func NewOrderController(store *store.OrderStore, email *services.EmailService) *OrderController {
	return &OrderController{store: store, email: email}
}

// GetOrderByID -> order detail with items and status history. The
// success page polls this while waiting for the webhook to land.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, ok := oc.loadOwnOrder(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetOrderStatus -> the order's current state derived from the last
// entry of the status-update log.
func (oc *OrderController) GetOrderStatus(c *gin.Context) {
	order, ok := oc.loadOwnOrder(c)
	if !ok {
		return
	}

	latest, err := oc.store.LatestStatusUpdate(c.Request.Context(), order.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	status := order.Status
	paymentStatus := models.PaymentStatusPending
	if latest != nil {
		status = latest.Status
		paymentStatus = latest.PaymentStatus
	}

	utils.RespondJSON(c, http.StatusOK, "Order status", gin.H{
		"order_id":       order.ID,
		"status":         status,
		"payment_status": paymentStatus,
	})
}

// SendConfirmationEmail emails the order summary to the given address.
func (oc *OrderController) SendConfirmationEmail(c *gin.Context) {
	order, ok := oc.loadOwnOrder(c)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := oc.email.SendOrderConfirmation(c.Request.Context(), req.Email, order); err != nil {
		utils.ErrorLogger.Printf("Failed to send confirmation email for order %s: %v", order.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to send email"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Confirmation email sent", gin.H{"order_id": order.ID})
}

// loadOwnOrder fetches the order from the path parameter and enforces
// that it belongs to the authenticated user.
func (oc *OrderController) loadOwnOrder(c *gin.Context) (*models.Order, bool) {
	order, err := oc.store.FindOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		} else {
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return nil, false
	}

	if order.UserID != c.GetString("user_id") {
		utils.RespondError(c, http.StatusForbidden, errors.New("order belongs to another user"))
		return nil, false
	}
	return order, true
}
