package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/middleware"
	"github.com/rookies/ecommerce-api/internal/service"
)

const maxImageSize = 5 << 20

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// bindProductForm parses the multipart product form: a "data" part with the
// JSON payload and an optional "image" part. The image must be a non-empty
// image/* file of at most 5MB.
func bindProductForm(c *gin.Context, imageRequired bool) (dto.CreateUpdateProductRequest, *service.ProductImage, func(), error) {
	var req dto.CreateUpdateProductRequest
	noop := func() {}

	data := c.PostForm("data")
	if data == "" {
		return req, nil, noop, apperr.ErrInvalidRequest
	}
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return req, nil, noop, apperr.ErrInvalidRequest
	}
	if req.Name == "" || req.Description == "" || req.CategoryID == uuid.Nil ||
		req.AvailableQuantity < 0 || req.Price.IsNegative() {
		return req, nil, noop, apperr.ErrInvalidRequest
	}

	header, err := c.FormFile("image")
	if err != nil {
		if imageRequired {
			return req, nil, noop, apperr.ErrInvalidImageFile
		}
		return req, nil, noop, nil
	}
	if err := validateImage(header); err != nil {
		return req, nil, noop, err
	}

	file, err := header.Open()
	if err != nil {
		return req, nil, noop, apperr.ErrInvalidImageFile
	}
	image := &service.ProductImage{
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
	return req, image, func() { _ = file.Close() }, nil
}

func validateImage(header *multipart.FileHeader) error {
	if header.Size == 0 || header.Size > maxImageSize {
		return apperr.ErrInvalidImageFile
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return apperr.ErrInvalidImageFile
	}
	return nil
}

func (h *ProductHandler) Create(c *gin.Context) {
	req, image, closeImage, err := bindProductForm(c, true)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeImage()

	resp, err := h.productService.Create(c.Request.Context(), middleware.GetUserID(c), req, image)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created successfully", resp)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrProductNotFound)
		return
	}

	req, image, closeImage, err := bindProductForm(c, false)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeImage()

	resp, err := h.productService.Update(c.Request.Context(), middleware.GetUserID(c), id, req, image)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated successfully", resp)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrProductNotFound)
		return
	}

	resp, err := h.productService.GetDetail(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved successfully", resp)
}

func (h *ProductHandler) GetBySlug(c *gin.Context) {
	resp, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved successfully", resp)
}

func (h *ProductHandler) AdminDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrProductNotFound)
		return
	}

	resp, err := h.productService.AdminDetail(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved successfully", resp)
}

func (h *ProductHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.productService.ListVisible(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Products retrieved successfully", resp)
}

func (h *ProductHandler) ListHidden(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.productService.ListHidden(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Products retrieved successfully", resp)
}

func (h *ProductHandler) ListByCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrCategoryNotFound)
		return
	}
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.productService.ListByCategory(c.Request.Context(), categoryID, q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Products retrieved successfully", resp)
}

func (h *ProductHandler) Search(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.productService.Search(c.Request.Context(), c.Query("name"), q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Products retrieved successfully", resp)
}

func (h *ProductHandler) Toggle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperr.ErrProductNotFound)
		return
	}

	resp, err := h.productService.Toggle(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product status updated successfully", resp)
}
