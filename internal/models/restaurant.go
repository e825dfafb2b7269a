package models

import "time"

type Restaurant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Image     string    `json:"image"`
	Cuisine   string    `json:"cuisine"`
	OwnerID   *uint     `json:"owner_id,omitempty"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Menu struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"not null"`
	Price        int64     `json:"price" gorm:"not null"`
	Category     string    `json:"category" gorm:"default:'Main Course'"`
	Description  string    `json:"description"`
	Available    bool      `json:"available" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Restaurant Restaurant `json:"-" gorm:"foreignKey:RestaurantID"`
}
