package models

import "time"

const (
	OrderStatusPlaced    = "Placed"
	OrderStatusPreparing = "Preparing"
	OrderStatusDelivered = "Delivered"
)

type Order struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Total       int64      `json:"total" gorm:"not null"`
	Status      string     `json:"status" gorm:"default:Placed;index"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	Reviewed    bool       `json:"reviewed" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type OrderItem struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	OrderID  uint   `json:"order_id" gorm:"not null;index"`
	MenuID   uint   `json:"menu_id" gorm:"not null"`
	Name     string `json:"name" gorm:"not null"`
	Price    int64  `json:"price" gorm:"not null"`
	Quantity int    `json:"quantity" gorm:"not null;check:quantity >= 1"`
}

// DeliveredTime is the anchor for the review cooldown window. Orders
// delivered before DeliveredAt existed fall back to UpdatedAt.
func (o *Order) DeliveredTime() time.Time {
	if o.DeliveredAt != nil {
		return *o.DeliveredAt
	}
	return o.UpdatedAt
}
