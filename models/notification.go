package models

type NotificationKind string

const (
	NotificationLowStock NotificationKind = "LOW_STOCK"
	NotificationStaleTab NotificationKind = "STALE_TAB"
)

// Notification is an operational alert raised by the alert monitor.
type Notification struct {
	Base
	RestaurantID string           `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Kind         NotificationKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	Title        string           `gorm:"type:varchar(100);not null" json:"title"`
	Message      string           `gorm:"type:text;not null" json:"message"`
	Reference    string           `gorm:"type:varchar(36);index" json:"reference"`
}
