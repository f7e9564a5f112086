package models

import (
	"time"
)

type OrderItem struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID string `gorm:"type:varchar(36);not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order       Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID  string    `gorm:"type:varchar(64);not null" json:"menu_item_id"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	PriceAtTime float64   `gorm:"type:decimal(10,2);not null" json:"price_at_time"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
