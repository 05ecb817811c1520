package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"materiaux-pro/internal/database/models"
	"materiaux-pro/internal/server/middleware"
	"materiaux-pro/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type OrderLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

type CreateOrderRequest struct {
	Lines []OrderLineRequest `json:"lines" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreateDeliveryRequest struct {
	OrderID      int64      `json:"order_id" binding:"required"`
	Address      string     `json:"address" binding:"required"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
}

type UpdateDeliveryRequest struct {
	Address      *string    `json:"address,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	lines := make([]service.LineInput, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = service.LineInput{ProductID: line.ProductID, Quantity: line.Quantity}
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), identity, lines)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("order placed", order))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("order", order))
}

func (h *OrderHandler) ClientOrders(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	orders, err := h.orders.ListClientOrders(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("orders", orders))
}

func (h *OrderHandler) SupplierOrders(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	orders, err := h.orders.ListSupplierOrders(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("orders", orders))
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), identity, id, models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("order status updated", order))
}

func (h *OrderHandler) OrderDelivery(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	delivery, err := h.orders.GetOrderDelivery(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("delivery", delivery))
}

func (h *OrderHandler) CreateDelivery(c *gin.Context) {
	var req CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	delivery, err := h.orders.CreateDelivery(c.Request.Context(), service.DeliveryInput{
		OrderID:      req.OrderID,
		Address:      req.Address,
		DeliveryDate: req.DeliveryDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("delivery scheduled", delivery))
}

func (h *OrderHandler) UpdateDelivery(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	delivery, err := h.orders.UpdateDelivery(c.Request.Context(), id, service.UpdateDeliveryInput{
		Address:      req.Address,
		DeliveryDate: req.DeliveryDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("delivery updated", delivery))
}
