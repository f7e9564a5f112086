package services

import (
	"context"
	"errors"

	"github.com/asing407/foodie-barcart/gateway"
	"github.com/asing407/foodie-barcart/models"
	"github.com/asing407/foodie-barcart/store"
)

var (
	ErrInvalidCart  = errors.New("invalid cart items")
	ErrUnauthorized = errors.New("unauthorized")
	ErrGateway      = errors.New("checkout session creation failed")
)

// OrderStore is the persistence surface the order services depend on.
// Satisfied by store.OrderStore; substituted with doubles in tests.
type OrderStore interface {
	InsertOrder(ctx context.Context, userID string, totalAmount float64) (*models.Order, error)
	InsertOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error
	DeleteOrder(ctx context.Context, orderID string) error
	FindStatusUpdate(ctx context.Context, orderID, paymentStatus string) (*models.StatusUpdate, error)
	ApplyTransition(ctx context.Context, orderID string, t store.Transition) error
	ConfirmPaymentOnce(ctx context.Context, orderID string, t store.Transition) (bool, error)
}

// PaymentGateway is the payment-provider surface. Satisfied by
// gateway.StripeService.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params gateway.SessionParams) (*gateway.Session, error)
	VerifyAndParseEvent(payload []byte, signatureHeader string) (*gateway.Event, error)
}
