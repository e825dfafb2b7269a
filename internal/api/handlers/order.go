package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quickbites/backend/internal/services"
	"github.com/quickbites/backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) Create(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	order, err := h.orderService.Create(userID, req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendCreated(c, "Order placed successfully", order)
}

func (h *OrderHandler) Accept(c *gin.Context) {
	orderID, ok := parseIDParam(c, "order_id")
	if !ok {
		return
	}

	order, err := h.orderService.Accept(orderID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Order accepted", order)
}

func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	orderID, ok := parseIDParam(c, "order_id")
	if !ok {
		return
	}

	order, err := h.orderService.MarkDelivered(orderID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Order delivered", order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := parseIDParam(c, "order_id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(orderID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "Order retrieved successfully", order)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	userID := c.GetUint("user_id")

	orders, err := h.orderService.ListMine(userID)
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch orders", err)
		return
	}

	utils.SendSuccess(c, "Orders retrieved successfully", orders)
}

// parseIDParam reads a numeric path parameter, sending a validation error
// on failure.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.SendValidationError(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
