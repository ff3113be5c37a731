package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/taskify_api/internal/middleware"
	"github.com/GTDGit/taskify_api/internal/service"
	"github.com/GTDGit/taskify_api/internal/utils"
)

type AuthHandler struct {
	authService *service.AdminAuthService
	rateLimiter *middleware.InvalidAuthRateLimiter
}

func NewAuthHandler(authService *service.AdminAuthService, rateLimiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, rateLimiter: rateLimiter}
}

func (h *AuthHandler) Login(c *gin.Context) {
	if h.rateLimiter.Blocked(c.ClientIP()) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many failed login attempts")
		return
	}

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) || errors.Is(err, service.ErrAccountInactive) {
			h.rateLimiter.Allow(c.ClientIP())
			utils.Error(c, 401, "INVALID_CREDENTIALS", err.Error())
			return
		}
		respondError(c, err)
		return
	}

	utils.Success(c, 200, "Login successful", res)
}
