package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/middleware"
	"github.com/rookies/ecommerce-api/internal/service"
)

type FeaturedHandler struct {
	featuredService *service.FeaturedService
}

func NewFeaturedHandler(featuredService *service.FeaturedService) *FeaturedHandler {
	return &FeaturedHandler{featuredService: featuredService}
}

func (h *FeaturedHandler) Create(c *gin.Context) {
	var req dto.CreateFeaturedProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.featuredService.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Featured product created successfully", resp)
}

func (h *FeaturedHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrResourceNotFound)
		return
	}

	var req dto.UpdateFeaturedProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.featuredService.Update(c.Request.Context(), middleware.GetUserID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Featured product updated successfully", resp)
}

func (h *FeaturedHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrResourceNotFound)
		return
	}

	if err := h.featuredService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Featured product deleted successfully", nil)
}

func (h *FeaturedHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrResourceNotFound)
		return
	}

	resp, err := h.featuredService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Featured product retrieved successfully", resp)
}

func (h *FeaturedHandler) ListAll(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.featuredService.ListAll(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Featured products retrieved successfully", resp)
}

// ListActive serves the storefront carousel: windows containing today.
func (h *FeaturedHandler) ListActive(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.featuredService.ListActive(c.Request.Context(), time.Now(), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Featured products retrieved successfully", resp)
}
