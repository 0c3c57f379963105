package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/model"
	"github.com/rookies/ecommerce-api/internal/repository"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type AuthService struct {
	userRepo      repository.UserRepository
	cartRepo      repository.CartRepository
	tokens        TokenStore
	jwtSecret     []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cartRepo repository.CartRepository, tokens TokenStore, jwtSecret string, accessExpiry, refreshExpiry time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		cartRepo:      cartRepo,
		tokens:        tokens,
		jwtSecret:     []byte(jwtSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// Register creates the user with its customer profile and an empty cart.
// The unique email constraint backstops concurrent registrations.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if existing != nil {
		return nil, apperr.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Email: req.Email, Password: string(hashed), Role: model.RoleUser, IsActive: true}
	customer := &model.Customer{FirstName: req.FirstName, LastName: req.LastName, Phone: req.Phone}
	if err := s.userRepo.CreateWithCustomer(ctx, user, customer); err != nil {
		return nil, apperr.FromConstraint(err)
	}

	resp := toUserResponse(user, customer.FirstName, customer.LastName, customer.Phone)
	return &resp, nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, apperr.ErrLoginFailed
	}
	if !user.IsActive {
		return nil, apperr.ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.ErrLoginFailed
	}

	access, expiresAt, err := s.generateToken(user, TokenTypeAccess, s.accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	refresh, _, err := s.generateToken(user, TokenTypeRefresh, s.refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	customer, err := s.userRepo.CustomerByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	resp := &dto.LoginResponse{Token: access, RefreshToken: refresh, ExpiresAt: expiresAt}
	if customer != nil {
		resp.User = toUserResponse(user, customer.FirstName, customer.LastName, customer.Phone)
		cart, err := s.cartRepo.GetByCustomer(ctx, customer.ID)
		if err != nil {
			return nil, err
		}
		if cart != nil {
			if resp.CartItemCount, err = s.cartRepo.Count(ctx, cart.ID); err != nil {
				return nil, err
			}
		}
	} else {
		resp.User = toUserResponse(user, "", "", "")
	}
	return resp, nil
}

// Logout adds the token id to the invalidation set until the token would
// have expired on its own. An already-expired token is a no-op.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.parseToken(rawToken, true)
	if err != nil {
		return apperr.ErrUnauthorized
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return apperr.ErrUnauthorized
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return apperr.ErrUnauthorized
	}
	ttl := time.Until(exp.Time)
	if ttl <= 0 {
		return nil
	}
	return s.tokens.Invalidate(ctx, jti, ttl)
}

// Refresh rotates a valid refresh token into a new access/refresh pair and
// invalidates the presented token id.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*dto.LoginResponse, error) {
	claims, err := s.parseToken(rawToken, false)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	if typ, _ := claims["typ"].(string); typ != TokenTypeRefresh {
		return nil, apperr.ErrUnauthorized
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, apperr.ErrUnauthorized
	}
	if revoked, err := s.tokens.IsInvalidated(ctx, jti); err != nil {
		return nil, err
	} else if revoked {
		return nil, apperr.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, apperr.ErrUserDisabled
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if ttl := time.Until(exp.Time); ttl > 0 {
			if err := s.tokens.Invalidate(ctx, jti, ttl); err != nil {
				return nil, err
			}
		}
	}

	access, expiresAt, err := s.generateToken(user, TokenTypeAccess, s.accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	refresh, _, err := s.generateToken(user, TokenTypeRefresh, s.refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	resp := &dto.LoginResponse{Token: access, RefreshToken: refresh, ExpiresAt: expiresAt}
	resp.User = toUserResponse(user, "", "", "")
	if customer, err := s.userRepo.CustomerByUserID(ctx, user.ID); err == nil && customer != nil {
		resp.User = toUserResponse(user, customer.FirstName, customer.LastName, customer.Phone)
	}
	return resp, nil
}

func (s *AuthService) generateToken(user *model.User, tokenType string, expiry time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(expiry)
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"typ":  tokenType,
		"jti":  uuid.NewString(),
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	return token, expiresAt, err
}

func (s *AuthService) parseToken(raw string, allowExpired bool) (jwt.MapClaims, error) {
	var opts []jwt.ParserOption
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, apperr.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	return claims, nil
}

func toUserResponse(user *model.User, firstName, lastName, phone string) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Role:      user.Role,
		IsActive:  user.IsActive,
	}
}
