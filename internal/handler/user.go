package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rookies/ecommerce-api/internal/dto"
	"github.com/rookies/ecommerce-api/internal/middleware"
	"github.com/rookies/ecommerce-api/internal/service"
)

type UserHandler struct {
	userService  *service.UserService
	adminService *service.AdminService
}

func NewUserHandler(userService *service.UserService, adminService *service.AdminService) *UserHandler {
	return &UserHandler{userService: userService, adminService: adminService}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	resp, err := h.userService.GetMe(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User retrieved successfully", resp)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateUserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.userService.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", resp)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return
	}
	active, err := strconv.ParseBool(c.DefaultQuery("active", "true"))
	if err != nil {
		badRequest(c)
		return
	}

	resp, err := h.adminService.ListUsersByStatus(c.Request.Context(), active, q)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Users retrieved successfully", resp)
}

func (h *UserHandler) ToggleUserStatus(c *gin.Context) {
	var req dto.ToggleUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	active, err := h.adminService.ToggleUserStatus(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User status updated successfully", gin.H{"is_active": active})
}
