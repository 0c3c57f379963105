package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/middleware"
	"github.com/rookies/ecommerce-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.orderService.Checkout(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order placed successfully", resp)
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrOrderNotFound)
		return
	}

	resp, err := h.orderService.GetByID(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved successfully", resp)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.orderService.ListMine(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", resp)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrOrderNotFound)
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	if err := h.orderService.UpdateStatus(c.Request.Context(), id, req); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated successfully", nil)
}
