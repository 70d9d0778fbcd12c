package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradebook/internal/dto"
	"gradebook/internal/service"
	"gradebook/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "邮箱或密码错误")
			return
		}
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// GetCurrentUser 当前登录用户
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authSvc.GetCurrentUser(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, user)
}

// Logout 用户登出，当前 Token 立即失效
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context()); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}
