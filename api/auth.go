package api

import (
	"errors"
	"net/http"

	"budget/config"
	"budget/middleware"
	"budget/models"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	cfg   *config.Config
	users *service.UserService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config, users *service.UserService) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"alice"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"password123"`
	Email    string `json:"email" binding:"omitempty,email" example:"alice@example.com"`
	Name     string `json:"name" binding:"omitempty,max=100" example:"Alice"`
}

// LoginRequest 登录请求（支持用户名或邮箱）
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"` // 可为用户名或邮箱
	Password string `json:"password" binding:"required" example:"password123"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register 用户注册
// @Summary 用户注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 201 {object} Response{data=models.User} "注册成功"
// @Failure 400 {object} Response "参数错误或用户名已存在"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Name:     req.Name,
	})
	if errors.Is(err, service.ErrUsernameTaken) {
		BadRequest(c, "Username already exists")
		return
	}
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}
	Created(c, user)
}

// Login 用户登录
// @Summary 用户登录
// @Description 用户登录获取 JWT token，同一 IP 有频率限制
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response{data=LoginResponse} "登录成功"
// @Failure 401 {object} Response "用户名或密码错误"
// @Failure 429 {object} Response "尝试过于频繁"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		Unauthorized(c, "Invalid username or password")
		return
	}
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "Failed to issue token")
		return
	}

	Success(c, LoginResponse{Token: token, User: *user})
}

// GetProfile 获取用户信息
// @Summary 获取当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), middleware.GetCurrentUserID(c))
	if errors.Is(err, service.ErrNotFound) {
		Error(c, http.StatusUnauthorized, "User no longer exists")
		return
	}
	if err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}
	Success(c, user)
}
