package service

import (
	"context"
	"errors"
	"strings"

	"budget/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUsernameTaken 用户名已存在
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials 用户名或密码错误，不区分哪一项
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// RegisterInput 注册信息
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Name     string
}

// UserService 用户注册与登录校验
type UserService struct {
	db *gorm.DB
}

// NewUserService 创建用户服务
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register 创建用户，密码以 bcrypt 保存
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return nil, persistenceError("check username", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Password: string(hashed),
		Email:    strings.TrimSpace(in.Email),
		Name:     strings.TrimSpace(in.Name),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, persistenceError("create user", err)
	}
	return &user, nil
}

// Authenticate 用户名或邮箱加密码登录
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, persistenceError("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Get 按 ID 获取用户
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError("user", "get user", err)
	}
	return &user, nil
}
