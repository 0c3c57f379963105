package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/model"
	"github.com/rookies/ecommerce-api/internal/repository"
	"github.com/rookies/ecommerce-api/internal/slug"
	"github.com/rookies/ecommerce-api/internal/upload"
)

const (
	productCachePrefix = "product:"
	productCacheTTL    = 60 * time.Second
)

// ProductImage is a validated image part handed down from the handler. A nil
// ProductImage means no image was submitted.
type ProductImage struct {
	ContentType string
	Reader      io.Reader
}

type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	uploader     upload.Uploader
	cache        *redis.Client
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	uploader upload.Uploader,
	cache *redis.Client,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		uploader:     uploader,
		cache:        cache,
	}
}

// Create assigns the product id up front so the slug and the image path can
// both embed it before the row exists.
func (s *ProductService) Create(ctx context.Context, actorID uuid.UUID, req dto.CreateUpdateProductRequest, image *ProductImage) (*dto.ProductDetailResponse, error) {
	if req.Price.IsNegative() {
		return nil, apperr.ErrInvalidRequest
	}

	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil || category.IsDeleted {
		return nil, apperr.ErrCategoryNotFound
	}

	p := &model.Product{
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		AvailableQuantity: req.AvailableQuantity,
		Audit:             model.Audit{CreatedBy: actorID, ModifiedBy: actorID},
	}
	p.ID = uuid.New()
	p.Slug = slug.Make(req.Name) + "-" + p.ID.String()

	if image != nil {
		url, err := s.uploader.Upload(ctx, imagePath(p.ID), image.ContentType, image.Reader)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		p.ImageURL = url
	}

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := toProductDetail(p)
	return &resp, nil
}

func (s *ProductService) Update(ctx context.Context, actorID, id uuid.UUID, req dto.CreateUpdateProductRequest, image *ProductImage) (*dto.ProductDetailResponse, error) {
	if req.Price.IsNegative() {
		return nil, apperr.ErrInvalidRequest
	}

	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrProductNotFound
	}

	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil || category.IsDeleted {
		return nil, apperr.ErrCategoryNotFound
	}

	p.CategoryID = req.CategoryID
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.AvailableQuantity = req.AvailableQuantity
	p.Slug = slug.Make(req.Name) + "-" + p.ID.String()
	p.ModifiedBy = actorID

	if image != nil {
		// Same object path, so the old image is replaced in place.
		url, err := s.uploader.Upload(ctx, imagePath(p.ID), image.ContentType, image.Reader)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		p.ImageURL = url
	}

	if err := s.productRepo.Update(ctx, p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrProductNotFound
		}
		return nil, err
	}
	s.evict(ctx, p.ID)

	resp := toProductDetail(p)
	return &resp, nil
}

// GetDetail serves the public product page through a short-lived cache.
// Hidden products read as absent.
func (s *ProductService) GetDetail(ctx context.Context, id uuid.UUID) (*dto.ProductDetailResponse, error) {
	p, err := s.cachedGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.IsDeleted {
		return nil, apperr.ErrProductNotFound
	}
	resp := toProductDetail(p)
	return &resp, nil
}

func (s *ProductService) GetBySlug(ctx context.Context, productSlug string) (*dto.ProductDetailResponse, error) {
	p, err := s.productRepo.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	if p == nil || p.IsDeleted {
		return nil, apperr.ErrProductNotFound
	}
	resp := toProductDetail(p)
	return &resp, nil
}

// AdminDetail returns the product regardless of its soft-delete state, with
// the auditor emails resolved.
func (s *ProductService) AdminDetail(ctx context.Context, id uuid.UUID) (*dto.ProductAdminDetail, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrProductNotFound
	}

	detail := &dto.ProductAdminDetail{ProductDetailResponse: toProductDetail(p)}
	detail.CreatedBy = s.auditorName(ctx, p.CreatedBy)
	detail.ModifiedBy = s.auditorName(ctx, p.ModifiedBy)
	return detail, nil
}

func (s *ProductService) ListVisible(ctx context.Context, q dto.PageQuery) (*dto.Page[dto.ProductResponse], error) {
	products, total, err := s.productRepo.ListByDeleted(ctx, false, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	return productPage(products, total, q), nil
}

func (s *ProductService) ListHidden(ctx context.Context, q dto.PageQuery) (*dto.Page[dto.ProductResponse], error) {
	products, total, err := s.productRepo.ListByDeleted(ctx, true, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	return productPage(products, total, q), nil
}

func (s *ProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID, q dto.PageQuery) (*dto.Page[dto.ProductResponse], error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.ErrCategoryNotFound
	}
	products, total, err := s.productRepo.ListByCategory(ctx, categoryID, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	return productPage(products, total, q), nil
}

func (s *ProductService) Search(ctx context.Context, name string, q dto.PageQuery) (*dto.Page[dto.ProductResponse], error) {
	products, total, err := s.productRepo.SearchByName(ctx, name, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	return productPage(products, total, q), nil
}

func (s *ProductService) Toggle(ctx context.Context, actorID, id uuid.UUID) (*dto.ToggleResponse, error) {
	deleted, err := s.productRepo.Toggle(ctx, id, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrProductNotFound
		}
		return nil, err
	}
	s.evict(ctx, id)
	return &dto.ToggleResponse{IsDeleted: deleted}, nil
}

func (s *ProductService) cachedGet(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	key := productCachePrefix + id.String()
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			p := &model.Product{}
			if err := json.Unmarshal(raw, p); err == nil {
				return p, nil
			}
		}
	}

	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(p); err == nil {
			// Cache errors never fail the read path.
			_ = s.cache.Set(ctx, key, raw, productCacheTTL).Err()
		}
	}
	return p, nil
}

func (s *ProductService) evict(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, productCachePrefix+id.String()).Err()
	}
}

func (s *ProductService) auditorName(ctx context.Context, userID uuid.UUID) string {
	if userID == uuid.Nil {
		return ""
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.Email
}

func imagePath(productID uuid.UUID) string {
	return "products/" + productID.String()
}

func productPage(products []model.Product, total int64, q dto.PageQuery) *dto.Page[dto.ProductResponse] {
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}
	return &dto.Page[dto.ProductResponse]{Items: items, Total: total, Page: q.Page, Size: q.Size}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Price:             p.Price,
		AvailableQuantity: p.AvailableQuantity,
		ImageURL:          p.ImageURL,
		Slug:              p.Slug,
		IsDeleted:         p.IsDeleted,
	}
}

func toProductDetail(p *model.Product) dto.ProductDetailResponse {
	return dto.ProductDetailResponse{
		ProductResponse: toProductResponse(p),
		Description:     p.Description,
		CategoryID:      p.CategoryID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
