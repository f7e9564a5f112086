package models

import (
	"time"
)

// Payment statuses recorded on a StatusUpdate row.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// StatusUpdate is one entry of an order's append-only status history.
// Rows are never updated or deleted; the latest row by CreatedAt is
// the order's current state.
type StatusUpdate struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	OrderID       string `gorm:"type:varchar(36);not null;index:idx_status_updates_order_payment" json:"order_id"`
	Order         Order  `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Status        string `gorm:"type:varchar(30);not null" json:"status"`
	PaymentStatus string `gorm:"type:varchar(20);not null;index:idx_status_updates_order_payment" json:"payment_status"`
	Notes         string `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
