package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses. The StatusUpdate log is the source of truth for
// payment state; Order.Status mirrors the latest applied transition.
const (
	OrderStatusPending           = "pending"
	OrderStatusConfirmed         = "confirmed"
	OrderStatusPaymentSuccessful = "payment_successful"
	OrderStatusPaymentFailed     = "payment_failed"
	OrderStatusExpired           = "expired"
)

type Order struct {
	ID            string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        string         `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Status        string         `gorm:"type:varchar(30);not null;default:'pending'" json:"status"`
	TotalAmount   float64        `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	OrderItems    []OrderItem    `gorm:"foreignKey:OrderID" json:"order_items"`
	StatusUpdates []StatusUpdate `gorm:"foreignKey:OrderID" json:"status_updates,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
