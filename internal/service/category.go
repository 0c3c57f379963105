package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/model"
	"github.com/rookies/ecommerce-api/internal/repository"
	"github.com/rookies/ecommerce-api/internal/slug"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) Create(ctx context.Context, actorID uuid.UUID, req dto.CreateUpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
		Slug:        slug.Make(req.Name),
		Audit:       model.Audit{CreatedBy: actorID, ModifiedBy: actorID},
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *CategoryService) Update(ctx context.Context, actorID, id uuid.UUID, req dto.CreateUpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.ErrCategoryNotFound
	}

	category.Name = req.Name
	category.Description = req.Description
	category.Slug = slug.Make(req.Name)
	category.ModifiedBy = actorID
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperr.ErrCategoryNotFound
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *CategoryService) List(ctx context.Context, q dto.PageQuery) (*dto.Page[dto.CategoryResponse], error) {
	categories, total, err := s.categoryRepo.List(ctx, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, toCategoryResponse(&categories[i]))
	}
	return &dto.Page[dto.CategoryResponse]{Items: items, Total: total, Page: q.Page, Size: q.Size}, nil
}

// Toggle flips the soft-delete flag and reports the resulting state.
func (s *CategoryService) Toggle(ctx context.Context, actorID, id uuid.UUID) (*dto.ToggleResponse, error) {
	deleted, err := s.categoryRepo.Toggle(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	return &dto.ToggleResponse{IsDeleted: deleted}, nil
}

func toCategoryResponse(c *model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Slug:        c.Slug,
		IsDeleted:   c.IsDeleted,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
