package models

import (
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	Base
	RestaurantID string          `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	OrderID      string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	MenuItemID   string          `gorm:"type:varchar(36);not null;index" json:"menu_item_id"`
	MenuItem     *MenuItem       `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Status       OrderStatus     `gorm:"type:varchar(20);not null" json:"status"`
	Notes        *string         `gorm:"type:varchar(255)" json:"notes"`
	Position     int             `gorm:"not null" json:"position"`
}
