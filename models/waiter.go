package models

type Waiter struct {
	Base
	RestaurantID string  `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Name         string  `gorm:"type:varchar(255);not null" json:"name"`
	Phone        *string `gorm:"type:varchar(30)" json:"phone"`
	TaxID        *string `gorm:"type:varchar(20)" json:"tax_id"`
	IsActive     bool    `gorm:"not null" json:"is_active"`
}
