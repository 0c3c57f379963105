package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/model"
	"github.com/rookies/ecommerce-api/internal/repository"
)

// AdminService covers the account-management operations exposed to admins
// only.
type AdminService struct {
	userRepo repository.UserRepository
}

func NewAdminService(userRepo repository.UserRepository) *AdminService {
	return &AdminService{userRepo: userRepo}
}

func (s *AdminService) ListUsersByStatus(ctx context.Context, active bool, q dto.PageQuery) (*dto.Page[dto.UserResponse], error) {
	accounts, total, err := s.userRepo.ListByRoleAndActive(ctx, model.RoleUser, active, q.Size, q.Offset(), q.SortBy, q.SortDir)
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserResponse, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		items = append(items, toUserResponse(&a.User, a.FirstName, a.LastName, a.Phone))
	}
	return &dto.Page[dto.UserResponse]{Items: items, Total: total, Page: q.Page, Size: q.Size}, nil
}

// ToggleUserStatus flips the account between enabled and disabled and
// reports the resulting state.
func (s *AdminService) ToggleUserStatus(ctx context.Context, req dto.ToggleUserStatusRequest) (bool, error) {
	active, err := s.userRepo.ToggleActive(ctx, req.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, apperr.ErrResourceNotFound
	}
	return active, err
}
