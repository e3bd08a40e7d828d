package models

type Category struct {
	Base
	RestaurantID string  `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Name         string  `gorm:"type:varchar(100);not null" json:"name"`
	Description  *string `gorm:"type:text" json:"description"`
	SortOrder    int     `gorm:"not null" json:"order"`
	IsActive     bool    `gorm:"not null" json:"is_active"`
}
