package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tab struct {
	Base
	RestaurantID  string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_tabs_restaurant_sequence" json:"restaurant_id"`
	Code          string          `gorm:"type:varchar(20);not null" json:"code"`
	Sequence      int             `gorm:"not null;uniqueIndex:idx_tabs_restaurant_sequence" json:"-"`
	Status        TabStatus       `gorm:"type:varchar(20);not null;index" json:"status"`
	TableID       string          `gorm:"type:varchar(36);not null;index" json:"table_id"`
	Table         *Table          `gorm:"foreignKey:TableID" json:"table,omitempty"`
	WaiterID      string          `gorm:"type:varchar(36);not null;index" json:"waiter_id"`
	Waiter        *Waiter         `gorm:"foreignKey:WaiterID" json:"waiter,omitempty"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod *PaymentMethod  `gorm:"type:varchar(20)" json:"payment_method"`
	OpenedAt      time.Time       `gorm:"not null" json:"opened_at"`
	ClosedAt      *time.Time      `json:"closed_at"`
	Orders        []Order         `gorm:"foreignKey:TabID" json:"orders,omitempty"`
}
