package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrUnauthorized
	}
	customer, err := s.userRepo.CustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user, "", "", "")
	if customer != nil {
		resp = toUserResponse(user, customer.FirstName, customer.LastName, customer.Phone)
	}
	return &resp, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateUserInfoRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrUnauthorized
	}
	customer, err := s.userRepo.CustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperr.ErrResourceNotFound
	}

	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Phone = req.Phone
	if err := s.userRepo.UpdateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	resp := toUserResponse(user, customer.FirstName, customer.LastName, customer.Phone)
	return &resp, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return apperr.ErrInvalidPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hashed))
}
