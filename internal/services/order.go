package services

import (
	"errors"
	"time"

	"github.com/quickbites/backend/internal/models"
	"github.com/quickbites/backend/pkg/apperror"
	"gorm.io/gorm"
)

// OrderService covers the slice of order lifecycle the review pipeline
// depends on: placing an order and walking it to Delivered. Status moves
// through guarded updates so concurrent transitions cannot skip states.
type OrderService struct {
	db *gorm.DB

	Now func() time.Time
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, Now: time.Now}
}

type OrderItemRequest struct {
	MenuID   uint `json:"menu_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	RestaurantID uint               `json:"restaurant_id" binding:"required"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (s *OrderService) Create(userID uint, req CreateOrderRequest) (*models.Order, error) {
	var restaurant models.Restaurant
	if err := s.db.Where("id = ? AND is_active = ?", req.RestaurantID, true).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Restaurant")
		}
		return nil, err
	}

	order := models.Order{
		UserID: userID,
		Status: models.OrderStatusPlaced,
	}

	for _, item := range req.Items {
		var menu models.Menu
		if err := s.db.Where("id = ? AND restaurant_id = ? AND available = ?",
			item.MenuID, restaurant.ID, true).First(&menu).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("Menu item")
			}
			return nil, err
		}

		order.Items = append(order.Items, models.OrderItem{
			MenuID:   menu.ID,
			Name:     menu.Name,
			Price:    menu.Price,
			Quantity: item.Quantity,
		})
		order.Total += menu.Price * int64(item.Quantity)
	}

	if err := s.db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Accept moves Placed to Preparing.
func (s *OrderService) Accept(orderID uint) (*models.Order, error) {
	return s.transition(orderID, models.OrderStatusPlaced, models.OrderStatusPreparing, nil)
}

// MarkDelivered moves Preparing to Delivered and stamps the delivery time
// the review cooldown anchors on.
func (s *OrderService) MarkDelivered(orderID uint) (*models.Order, error) {
	now := s.Now()
	return s.transition(orderID, models.OrderStatusPreparing, models.OrderStatusDelivered,
		map[string]interface{}{"delivered_at": &now})
}

func (s *OrderService) transition(orderID uint, from, to string, extra map[string]interface{}) (*models.Order, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var order models.Order
		if err := s.db.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("Order")
			}
			return nil, err
		}
		return nil, apperror.State(apperror.CodeInvalidState, "Order is not in a state that allows this transition")
	}

	return s.Get(orderID)
}

func (s *OrderService) Get(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Order")
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) ListMine(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
