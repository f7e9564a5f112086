package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asing407/foodie-barcart/models"
)

var ErrOrderNotFound = errors.New("order not found")

// Transition is one status change applied to an order: a StatusUpdate
// row plus a refresh of the order's cached status.
type Transition struct {
	Status        string
	PaymentStatus string
	Notes         string
}

// OrderStore persists orders, their items and their status history.
type OrderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// InsertOrder creates a new order in pending status.
func (s *OrderStore) InsertOrder(ctx context.Context, userID string, totalAmount float64) (*models.Order, error) {
	order := models.Order{
		UserID:      userID,
		Status:      models.OrderStatusPending,
		TotalAmount: totalAmount,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &order, nil
}

// InsertOrderItems creates the line items for an order in one batch.
func (s *OrderStore) InsertOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	for i := range items {
		items[i].OrderID = orderID
		items[i].CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

// DeleteOrder removes an order and everything belonging to it. Used as
// the compensating rollback when checkout fails part-way.
func (s *OrderStore) DeleteOrder(ctx context.Context, orderID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.StatusUpdate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.PaymentConfirmation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", orderID).Error
	})
}

// FindOrder loads an order with its items and full status history.
func (s *OrderStore) FindOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("StatusUpdates", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindStatusUpdate returns the first status update on an order with the
// given payment status, or nil when none exists.
func (s *OrderStore) FindStatusUpdate(ctx context.Context, orderID, paymentStatus string) (*models.StatusUpdate, error) {
	var update models.StatusUpdate
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND payment_status = ?", orderID, paymentStatus).
		First(&update).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &update, nil
}

// LatestStatusUpdate returns the newest entry of the order's status
// history, or nil when the order has none yet.
func (s *OrderStore) LatestStatusUpdate(ctx context.Context, orderID string) (*models.StatusUpdate, error) {
	var update models.StatusUpdate
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC, id DESC").
		First(&update).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &update, nil
}

// InsertStatusUpdate appends a single entry to the order's status
// history without touching the order row.
func (s *OrderStore) InsertStatusUpdate(ctx context.Context, orderID, status, paymentStatus, notes string) error {
	update := models.StatusUpdate{
		OrderID:       orderID,
		Status:        status,
		PaymentStatus: paymentStatus,
		Notes:         notes,
		CreatedAt:     time.Now(),
	}
	return s.db.WithContext(ctx).Create(&update).Error
}

// UpdateOrderStatus refreshes the order's cached status field.
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	result := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ApplyTransition appends a StatusUpdate and refreshes the order's
// status in one transaction, so a partial write surfaces as an error
// instead of leaving the two tables diverged. Once an order carries a
// success status update, failure transitions still append their audit
// row but no longer downgrade the order's status.
func (s *OrderStore) ApplyTransition(ctx context.Context, orderID string, t Transition) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to find order: %w", err)
		}

		update := models.StatusUpdate{
			OrderID:       orderID,
			Status:        t.Status,
			PaymentStatus: t.PaymentStatus,
			Notes:         t.Notes,
			CreatedAt:     time.Now(),
		}
		if err := tx.Create(&update).Error; err != nil {
			return fmt.Errorf("failed to insert status update: %w", err)
		}

		if t.PaymentStatus == models.PaymentStatusFailed {
			var confirmed int64
			if err := tx.Model(&models.StatusUpdate{}).
				Where("order_id = ? AND payment_status = ? AND id <> ?",
					orderID, models.PaymentStatusSuccess, update.ID).
				Count(&confirmed).Error; err != nil {
				return err
			}
			if confirmed > 0 {
				// Out-of-order failure after a success: keep the
				// order's status as is.
				return nil
			}
		}

		order.Status = t.Status
		order.UpdatedAt = time.Now()
		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
}

// ConfirmPaymentOnce applies the payment-confirmed transition at most
// once per order. It returns false when the order already carries a
// success status update, so a redelivered completed event becomes an
// acknowledged no-op. The conditional insert on payment_confirmations
// keeps the check race-safe under concurrent deliveries.
func (s *OrderStore) ConfirmPaymentOnce(ctx context.Context, orderID string, t Transition) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to find order: %w", err)
		}

		var successes int64
		if err := tx.Model(&models.StatusUpdate{}).
			Where("order_id = ? AND payment_status = ?", orderID, models.PaymentStatusSuccess).
			Count(&successes).Error; err != nil {
			return err
		}
		if successes > 0 {
			return nil
		}

		guard := models.PaymentConfirmation{OrderID: orderID, CreatedAt: time.Now()}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&guard)
		if result.Error != nil {
			return fmt.Errorf("failed to record payment confirmation: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// A concurrent delivery won the insert.
			return nil
		}

		update := models.StatusUpdate{
			OrderID:       orderID,
			Status:        t.Status,
			PaymentStatus: t.PaymentStatus,
			Notes:         t.Notes,
			CreatedAt:     time.Now(),
		}
		if err := tx.Create(&update).Error; err != nil {
			return fmt.Errorf("failed to insert status update: %w", err)
		}

		order.Status = t.Status
		order.UpdatedAt = time.Now()
		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
