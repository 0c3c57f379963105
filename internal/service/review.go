package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/model"
	"github.com/rookies/ecommerce-api/internal/repository"
)

// ReviewService enforces one review per (customer, product) and restricts
// edits to the author. Admins may delete any review.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, productRepo: productRepo, userRepo: userRepo}
}

func (s *ReviewService) customerOf(ctx context.Context, userID uuid.UUID) (*model.Customer, error) {
	customer, err := s.userRepo.CustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperr.ErrUnauthorized
	}
	return customer, nil
}

func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	customer, err := s.customerOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.IsDeleted {
		return nil, apperr.ErrProductNotFound
	}

	review := &model.Review{
		CustomerID: customer.ID,
		ProductID:  req.ProductID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	resp := toReviewResponse(review, customer.FullName(), product.Name)
	return &resp, nil
}

func (s *ReviewService) Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	customer, err := s.customerOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, apperr.ErrResourceNotFound
	}
	if review.CustomerID != customer.ID {
		return nil, apperr.ErrAccessDenied
	}

	review.Rating = req.Rating
	review.Comment = req.Comment
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrResourceNotFound
		}
		return nil, err
	}

	resp := toReviewResponse(review, customer.FullName(), "")
	return &resp, nil
}

func (s *ReviewService) Delete(ctx context.Context, userID uuid.UUID, role model.Role, id uuid.UUID) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if review == nil {
		return apperr.ErrResourceNotFound
	}

	if role != model.RoleAdmin {
		customer, err := s.customerOf(ctx, userID)
		if err != nil {
			return err
		}
		if review.CustomerID != customer.ID {
			return apperr.ErrAccessDenied
		}
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrResourceNotFound
		}
		return err
	}
	return nil
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID uuid.UUID, q dto.PageQuery) (*dto.Page[dto.ReviewResponse], error) {
	rows, total, err := s.reviewRepo.ListByProduct(ctx, productID, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	return reviewPage(rows, total, q), nil
}

func (s *ReviewService) ListMine(ctx context.Context, userID uuid.UUID, q dto.PageQuery) (*dto.Page[dto.ReviewResponse], error) {
	customer, err := s.customerOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.reviewRepo.ListByCustomer(ctx, customer.ID, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	return reviewPage(rows, total, q), nil
}

func (s *ReviewService) ListAll(ctx context.Context, q dto.PageQuery) (*dto.Page[dto.ReviewResponse], error) {
	rows, total, err := s.reviewRepo.ListAll(ctx, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}
	return reviewPage(rows, total, q), nil
}

func (s *ReviewService) Statistic(ctx context.Context, productID uuid.UUID) (*dto.ReviewStatisticResponse, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.ErrProductNotFound
	}

	stat, err := s.reviewRepo.Statistic(ctx, productID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReviewStatisticResponse{Count: stat.Count, AverageRating: stat.AverageRating}
	for _, rc := range stat.Ratings {
		resp.Ratings = append(resp.Ratings, dto.RatingCountResponse{
			Rating:  rc.Rating,
			Count:   rc.Count,
			Percent: rc.Percent,
		})
	}
	return resp, nil
}

func reviewPage(rows []model.ReviewRow, total int64, q dto.PageQuery) *dto.Page[dto.ReviewResponse] {
	items := make([]dto.ReviewResponse, 0, len(rows))
	for i := range rows {
		r := toReviewResponse(&rows[i].Review, rows[i].CustomerName, rows[i].ProductName)
		items = append(items, r)
	}
	return &dto.Page[dto.ReviewResponse]{Items: items, Total: total, Page: q.Page, Size: q.Size}
}

func toReviewResponse(r *model.Review, customerName, productName string) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:           r.ID,
		ProductID:    r.ProductID,
		ProductName:  productName,
		CustomerName: customerName,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt,
	}
}
