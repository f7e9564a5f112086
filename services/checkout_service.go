package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/asing407/foodie-barcart/gateway"
	"github.com/asing407/foodie-barcart/models"
	"github.com/asing407/foodie-barcart/utils"
)

// CartItem is one entry of a submitted cart.
type CartItem struct {
	ItemID      string  `json:"id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"image"`
}

// CheckoutService turns a submitted cart into a persisted order plus a
// hosted payment session, or fails cleanly with no partial state left
// behind.
type CheckoutService struct {
	store   OrderStore
	gateway PaymentGateway
}

func NewCheckoutService(store OrderStore, gw PaymentGateway) *CheckoutService {
	return &CheckoutService{store: store, gateway: gw}
}

// CreateCheckout validates the cart, persists the order with its items,
// creates a checkout session carrying the order id as correlation
// token, and returns the session's redirect URL. If session creation
// fails the order and its items are rolled back.
func (s *CheckoutService) CreateCheckout(ctx context.Context, cart []CartItem, ownerID, ownerEmail, originURL string) (string, error) {
	if ownerID == "" {
		return "", ErrUnauthorized
	}
	if len(cart) == 0 {
		return "", fmt.Errorf("%w: cart is empty", ErrInvalidCart)
	}

	// Sum in integer cents; the float total is only the external
	// representation.
	var totalCents int64
	for _, item := range cart {
		if item.Quantity <= 0 {
			return "", fmt.Errorf("%w: quantity must be greater than 0 for item %s", ErrInvalidCart, item.ItemID)
		}
		if item.Price < 0 {
			return "", fmt.Errorf("%w: negative price for item %s", ErrInvalidCart, item.ItemID)
		}
		totalCents += utils.ToCents(item.Price) * int64(item.Quantity)
	}

	order, err := s.store.InsertOrder(ctx, ownerID, utils.FromCents(totalCents))
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	utils.InfoLogger.Printf("Order %s created for user %s, total %.2f", order.ID, ownerID, order.TotalAmount)

	items := make([]models.OrderItem, 0, len(cart))
	for _, item := range cart {
		items = append(items, models.OrderItem{
			MenuItemID:  item.ItemID,
			Quantity:    item.Quantity,
			PriceAtTime: item.Price,
		})
	}
	if err := s.store.InsertOrderItems(ctx, order.ID, items); err != nil {
		s.rollback(ctx, order.ID)
		return "", fmt.Errorf("failed to create order items: %w", err)
	}

	origin := strings.TrimRight(originURL, "/")
	params := gateway.SessionParams{
		OrderID:       order.ID,
		SuccessURL:    fmt.Sprintf("%s/success?order_id=%s", origin, order.ID),
		CancelURL:     origin + "/?canceled=true",
		CustomerEmail: ownerEmail,
		LineItems:     make([]gateway.SessionLineItem, 0, len(cart)),
	}
	for _, item := range cart {
		params.LineItems = append(params.LineItems, gateway.SessionLineItem{
			Name:        item.Name,
			Description: item.Description,
			ImageURL:    item.ImageURL,
			UnitAmount:  utils.ToCents(item.Price),
			Quantity:    item.Quantity,
		})
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		s.rollback(ctx, order.ID)
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	utils.InfoLogger.Printf("Checkout session %s created for order %s", session.ID, order.ID)

	return session.URL, nil
}

// rollback is the compensating delete for a half-finished checkout.
// Best effort: the failure that triggered it is the error the caller
// sees.
func (s *CheckoutService) rollback(ctx context.Context, orderID string) {
	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		utils.ErrorLogger.Printf("Failed to roll back order %s: %v", orderID, err)
	}
}
