package models

import (
	"github.com/shopspring/decimal"
)

type Order struct {
	Base
	RestaurantID string          `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	TabID        string          `gorm:"type:varchar(36);not null;index" json:"tab_id"`
	Tab          *Tab            `gorm:"foreignKey:TabID" json:"tab,omitempty"`
	Status       OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Notes        *string         `gorm:"type:varchar(255)" json:"notes"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

// Recompute derives the order's total and status from its items. It is the
// only place either field is written after creation.
func (o *Order) Recompute() {
	total := decimal.Zero
	for _, item := range o.Items {
		if item.Status != OrderCancelled {
			total = total.Add(item.TotalPrice)
		}
	}
	o.TotalAmount = total
	o.Status = DeriveOrderStatus(o.Items)
}

// DeriveOrderStatus applies the precedence
// CANCELLED > DELIVERED > PREPARING > READY > PENDING.
// Cancelled lines do not keep an otherwise delivered order open.
func DeriveOrderStatus(items []OrderItem) OrderStatus {
	if len(items) == 0 {
		return OrderPending
	}
	active, delivered, preparing, ready := 0, 0, 0, 0
	for _, item := range items {
		switch item.Status {
		case OrderCancelled:
			continue
		case OrderDelivered:
			delivered++
		case OrderPreparing:
			preparing++
		case OrderReady:
			ready++
		}
		active++
	}
	switch {
	case active == 0:
		return OrderCancelled
	case delivered == active:
		return OrderDelivered
	case preparing > 0:
		return OrderPreparing
	case ready > 0:
		return OrderReady
	}
	return OrderPending
}
