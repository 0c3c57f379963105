package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rookies/ecommerce-api/internal/apperr"
	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Registered successfully", resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Logged in successfully", resp)
}

// Logout invalidates the presented access token. The token comes from the
// Authorization header, not the body, so an expired token still logs out
// cleanly.
func (h *AuthHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		fail(c, apperr.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), header[7:]); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Token refreshed successfully", resp)
}
