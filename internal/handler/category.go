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

type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateUpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.categoryService.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", resp)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrCategoryNotFound)
		return
	}

	var req dto.CreateUpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.categoryService.Update(c.Request.Context(), middleware.GetUserID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", resp)
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrCategoryNotFound)
		return
	}

	resp, err := h.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Category retrieved successfully", resp)
}

func (h *CategoryHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.categoryService.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Categories retrieved successfully", resp)
}

func (h *CategoryHandler) Toggle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrCategoryNotFound)
		return
	}

	resp, err := h.categoryService.Toggle(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Category status updated successfully", resp)
}
