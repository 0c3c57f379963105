package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/middleware"
	"github.com/rookies/ecommerce-api/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.CreateUpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.cartService.AddToCart(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Item added to cart successfully", resp)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req dto.CreateUpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.cartService.UpdateCart(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart updated successfully", resp)
}

func (h *CartHandler) RemoveItems(c *gin.Context) {
	var req dto.RemoveCartItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.cartService.RemoveItems(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Items removed from cart successfully", resp)
}

func (h *CartHandler) GetDetail(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.cartService.GetCartDetail(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart retrieved successfully", resp)
}
