package models

import (
	"time"
)

// PaymentConfirmation marks an order as payment-confirmed. The primary
// key on OrderID makes the checkout-completed transition a conditional
// insert at the database layer, so concurrent webhook redeliveries
// cannot both confirm the same order.
type PaymentConfirmation struct {
	OrderID   string    `gorm:"type:varchar(36);primaryKey" json:"order_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
