package models

import "github.com/shopspring/decimal"

type MenuItem struct {
	Base
	RestaurantID    string               `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	CategoryID      string               `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Category        *Category            `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name            string               `gorm:"type:varchar(255);not null" json:"name"`
	Description     *string              `gorm:"type:text" json:"description"`
	Price           decimal.Decimal      `gorm:"type:decimal(10,2);not null" json:"price"`
	Image           *string              `gorm:"type:varchar(255)" json:"image"`
	IsAvailable     bool                 `gorm:"not null" json:"is_available"`
	PreparationTime int                  `gorm:"not null" json:"preparation_time"`
	Ingredients     []MenuItemIngredient `gorm:"foreignKey:MenuItemID" json:"ingredients"`
}

// MenuItemIngredient is one recipe line: how much of a stock item a single
// unit of the menu item consumes.
type MenuItemIngredient struct {
	Base
	MenuItemID  string          `gorm:"type:varchar(36);not null;index" json:"menu_item_id"`
	StockItemID string          `gorm:"type:varchar(36);not null;index" json:"stock_item_id"`
	StockItem   *StockItem      `gorm:"foreignKey:StockItemID" json:"stock_item,omitempty"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Position    int             `gorm:"not null" json:"position"`
}
