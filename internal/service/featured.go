package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/model"
	"github.com/rookies/ecommerce-api/internal/repository"
)

// FeaturedService maintains the non-overlapping promotional windows per
// product. The overlap check and the write share one transaction with the
// product row locked, so two concurrent writers for the same product cannot
// both pass the check and commit conflicting windows.
type FeaturedService struct {
	featuredRepo repository.FeaturedProductRepository
}

func NewFeaturedService(featuredRepo repository.FeaturedProductRepository) *FeaturedService {
	return &FeaturedService{featuredRepo: featuredRepo}
}

func (s *FeaturedService) Create(ctx context.Context, actorID uuid.UUID, req dto.CreateFeaturedProductRequest) (*dto.FeaturedProductResponse, error) {
	start, end := req.StartDate.Time, req.EndDate.Time
	if end.Before(start) {
		return nil, apperr.ErrInvalidDateRange
	}

	tx, err := s.featuredRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	exists, err := s.featuredRepo.LockProduct(ctx, tx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrProductNotFound
	}

	if err := s.checkOverlap(ctx, tx, req.ProductID, start, end, uuid.Nil); err != nil {
		return nil, err
	}

	fp := &model.FeaturedProduct{
		ProductID:   req.ProductID,
		StartDate:   start,
		EndDate:     end,
		Description: req.Description,
		Audit:       model.Audit{CreatedBy: actorID, ModifiedBy: actorID},
	}
	if err := s.featuredRepo.Create(ctx, tx, fp); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	resp := toFeaturedResponse(fp, nil)
	return &resp, nil
}

func (s *FeaturedService) Update(ctx context.Context, actorID, id uuid.UUID, req dto.UpdateFeaturedProductRequest) (*dto.FeaturedProductResponse, error) {
	start, end := req.StartDate.Time, req.EndDate.Time
	if end.Before(start) {
		return nil, apperr.ErrInvalidDateRange
	}

	fp, err := s.featuredRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fp == nil {
		return nil, apperr.ErrResourceNotFound
	}

	tx, err := s.featuredRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.featuredRepo.LockProduct(ctx, tx, fp.ProductID); err != nil {
		return nil, err
	}

	// The record being updated is excluded from its own overlap set, so
	// re-saving the same window succeeds.
	if err := s.checkOverlap(ctx, tx, fp.ProductID, start, end, fp.ID); err != nil {
		return nil, err
	}

	fp.StartDate = start
	fp.EndDate = end
	fp.Description = req.Description
	fp.ModifiedBy = actorID
	if err := s.featuredRepo.Update(ctx, tx, fp); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	resp := toFeaturedResponse(fp, nil)
	return &resp, nil
}

func (s *FeaturedService) checkOverlap(ctx context.Context, tx pgx.Tx, productID uuid.UUID, start, end time.Time, excludeID uuid.UUID) error {
	windows, err := s.featuredRepo.ListByProduct(ctx, tx, productID)
	if err != nil {
		return err
	}
	// A handful of windows per product at most; a linear scan with the
	// closed-interval predicate is enough.
	for _, w := range windows {
		if w.ID == excludeID {
			continue
		}
		if w.Overlaps(start, end) {
			return apperr.ErrOverlappingWindow
		}
	}
	return nil
}

func (s *FeaturedService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.featuredRepo.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrResourceNotFound
	}
	return err
}

func (s *FeaturedService) GetByID(ctx context.Context, id uuid.UUID) (*dto.FeaturedProductResponse, error) {
	row, err := s.featuredRepo.GetRowByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrResourceNotFound
	}
	resp := toFeaturedResponse(&row.FeaturedProduct, row)
	return &resp, nil
}

func (s *FeaturedService) ListAll(ctx context.Context, q dto.PageQuery) (*dto.Page[dto.FeaturedProductResponse], error) {
	rows, total, err := s.featuredRepo.ListAll(ctx, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	return featuredPage(rows, total, q), nil
}

// ListActive returns the windows containing now whose product is visible.
func (s *FeaturedService) ListActive(ctx context.Context, now time.Time, q dto.PageQuery) (*dto.Page[dto.FeaturedProductResponse], error) {
	rows, total, err := s.featuredRepo.ListActive(ctx, now, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	return featuredPage(rows, total, q), nil
}

func featuredPage(rows []model.FeaturedProductRow, total int64, q dto.PageQuery) *dto.Page[dto.FeaturedProductResponse] {
	items := make([]dto.FeaturedProductResponse, 0, len(rows))
	for i := range rows {
		items = append(items, toFeaturedResponse(&rows[i].FeaturedProduct, &rows[i]))
	}
	return &dto.Page[dto.FeaturedProductResponse]{Items: items, Total: total, Page: q.Page, Size: q.Size}
}

func toFeaturedResponse(fp *model.FeaturedProduct, row *model.FeaturedProductRow) dto.FeaturedProductResponse {
	resp := dto.FeaturedProductResponse{
		ID:          fp.ID,
		ProductID:   fp.ProductID,
		StartDate:   dto.Date{Time: fp.StartDate},
		EndDate:     dto.Date{Time: fp.EndDate},
		Description: fp.Description,
	}
	if row != nil {
		resp.ProductName = row.ProductName
		resp.ProductSlug = row.ProductSlug
		resp.Price = row.ProductPrice
		resp.ImageURL = row.ImageURL
	}
	return resp
}
