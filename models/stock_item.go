package models

import (
	"github.com/shopspring/decimal"
)

type StockItem struct {
	Base
	RestaurantID string          `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Unit         string          `gorm:"type:varchar(20);not null" json:"unit"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	MinQuantity  decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"min_quantity"`
	Cost         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
	IsActive     bool            `gorm:"not null" json:"is_active"`
	Movements    []StockMovement `gorm:"foreignKey:StockItemID" json:"movements,omitempty"`
}

// IsLow reports quantity strictly below the alert threshold.
func (s StockItem) IsLow() bool {
	return s.Quantity.LessThan(s.MinQuantity)
}

type MovementKind string

const (
	MovementSale       MovementKind = "SALE"
	MovementRestore    MovementKind = "RESTORE"
	MovementAdjustment MovementKind = "ADJUSTMENT"
)

// StockMovement records every change of a stock item's quantity.
type StockMovement struct {
	Base
	RestaurantID string          `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	StockItemID  string          `gorm:"type:varchar(36);not null;index" json:"stock_item_id"`
	Kind         MovementKind    `gorm:"type:varchar(20);not null" json:"kind"`
	Delta        decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"delta"`
	Before       decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"before"`
	After        decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"after"`
	Reference    string          `gorm:"type:varchar(255)" json:"reference"`
}
