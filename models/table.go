package models

type Table struct {
	Base
	RestaurantID string      `gorm:"type:varchar(36);not null;uniqueIndex:idx_tables_restaurant_number" json:"restaurant_id"`
	Number       int         `gorm:"not null;uniqueIndex:idx_tables_restaurant_number" json:"number"`
	Capacity     int         `gorm:"not null" json:"capacity"`
	Status       TableStatus `gorm:"type:varchar(20);not null" json:"status"`
	Tabs         []Tab       `gorm:"foreignKey:TableID" json:"tabs,omitempty"`
}
