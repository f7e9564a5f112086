package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/asing407/foodie-barcart/gateway"
	"github.com/asing407/foodie-barcart/models"
	"github.com/asing407/foodie-barcart/store"
	"github.com/asing407/foodie-barcart/utils"
)

// ReconcilerService consumes payment-outcome webhooks and applies
// idempotent status transitions to the matching order. A returned error
// means the delivery should be retried by the gateway; the idempotency
// of the completed branch makes that retry safe.
type ReconcilerService struct {
	store   OrderStore
	gateway PaymentGateway
}

func NewReconcilerService(store OrderStore, gw PaymentGateway) *ReconcilerService {
	return &ReconcilerService{store: store, gateway: gw}
}

// HandleEvent verifies the payload's signature, parses it and
// dispatches on the event kind. Unknown kinds are acknowledged without
// any store mutation.
func (s *ReconcilerService) HandleEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gateway.VerifyAndParseEvent(payload, signatureHeader)
	if err != nil {
		return err
	}

	switch event.Kind {
	case gateway.EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event)

	case gateway.EventPaymentSucceeded:
		return s.apply(ctx, event, store.Transition{
			Status:        models.OrderStatusPaymentSuccessful,
			PaymentStatus: models.PaymentStatusSuccess,
		})

	case gateway.EventPaymentFailed:
		return s.apply(ctx, event, store.Transition{
			Status:        models.OrderStatusPaymentFailed,
			PaymentStatus: models.PaymentStatusFailed,
			Notes:         event.FailureReason,
		})

	case gateway.EventCheckoutExpired:
		return s.apply(ctx, event, store.Transition{
			Status:        models.OrderStatusExpired,
			PaymentStatus: models.PaymentStatusFailed,
		})

	default:
		utils.InfoLogger.Printf("Ignoring webhook event kind %q", event.Kind)
		return nil
	}
}

func (s *ReconcilerService) handleCheckoutCompleted(ctx context.Context, event *gateway.Event) error {
	if event.OrderID == "" {
		return gateway.ErrNoOrderRef
	}

	applied, err := s.store.ConfirmPaymentOnce(ctx, event.OrderID, store.Transition{
		Status:        models.OrderStatusConfirmed,
		PaymentStatus: models.PaymentStatusSuccess,
		Notes:         "Payment confirmed via Stripe",
	})
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return fmt.Errorf("%w: order %s", gateway.ErrNoOrderRef, event.OrderID)
		}
		return fmt.Errorf("failed to confirm payment for order %s: %w", event.OrderID, err)
	}

	if !applied {
		utils.InfoLogger.Printf("Order %s already confirmed, acknowledging duplicate delivery", event.OrderID)
		return nil
	}

	utils.InfoLogger.Printf("Payment confirmed for order %s", event.OrderID)
	return nil
}

func (s *ReconcilerService) apply(ctx context.Context, event *gateway.Event, t store.Transition) error {
	if event.OrderID == "" {
		return gateway.ErrNoOrderRef
	}

	if err := s.store.ApplyTransition(ctx, event.OrderID, t); err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return fmt.Errorf("%w: order %s", gateway.ErrNoOrderRef, event.OrderID)
		}
		return fmt.Errorf("failed to apply %s to order %s: %w", t.Status, event.OrderID, err)
	}

	utils.InfoLogger.Printf("Order %s transitioned to %s (payment %s)", event.OrderID, t.Status, t.PaymentStatus)
	return nil
}
