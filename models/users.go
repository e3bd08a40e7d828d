package models

type User struct {
	Base
	RestaurantID string `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password     string `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null" json:"role"`
}

type Restaurant struct {
	Base
	Name string `gorm:"type:varchar(255);not null" json:"name"`
}
