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

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.reviewService.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Review created successfully", resp)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrResourceNotFound)
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.reviewService.Update(c.Request.Context(), middleware.GetUserID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Review updated successfully", resp)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrResourceNotFound)
		return
	}

	err = h.reviewService.Delete(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserRole(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Review deleted successfully", nil)
}

func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrProductNotFound)
		return
	}
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.reviewService.ListByProduct(c.Request.Context(), productID, q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Reviews retrieved successfully", resp)
}

func (h *ReviewHandler) ListMine(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.reviewService.ListMine(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Reviews retrieved successfully", resp)
}

func (h *ReviewHandler) ListAll(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.reviewService.ListAll(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Reviews retrieved successfully", resp)
}

func (h *ReviewHandler) Statistic(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrProductNotFound)
		return
	}

	resp, err := h.reviewService.Statistic(c.Request.Context(), productID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Review statistics retrieved successfully", resp)
}
