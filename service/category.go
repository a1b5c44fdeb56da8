package service

import (
	"context"
	"errors"
	"strings"

	"budget/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

// CategoryInput 创建类别
type CategoryInput struct {
	Name        string
	Type        string
	BudgetLimit decimal.NullDecimal
	Color       string
	Icon        string
}

// CategoryPatch 部分更新，nil 表示未提供
type CategoryPatch struct {
	Name        *string
	Type        *string
	BudgetLimit *decimal.Decimal
	Color       *string
	Icon        *string
}

// CategoryService 类别目录，所有操作按 userID 隔离
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService 创建类别服务
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// List 当前用户的类别，kind 为空时不过滤类型
func (s *CategoryService) List(ctx context.Context, userID uint, kind string) ([]models.Category, error) {
	if kind != "" && !models.IsValidType(kind) {
		return nil, NewValidationError("type", "Invalid category type")
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if kind != "" {
		query = query.Where("type = ?", kind)
	}

	list := []models.Category{}
	if err := query.Order("type ASC, name ASC").Find(&list).Error; err != nil {
		return nil, persistenceError("list categories", err)
	}
	return list, nil
}

// Get 按 ID 获取当前用户的类别
func (s *CategoryService) Get(ctx context.Context, userID uint, id string) (*models.Category, error) {
	categoryID, err := uuid.FromString(id)
	if err != nil {
		return nil, notFound("category")
	}

	var category models.Category
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, userID).
		First(&category).Error; err != nil {
		return nil, lookupError("category", "get category", err)
	}
	return &category, nil
}

// Create 校验并创建类别
func (s *CategoryService) Create(ctx context.Context, userID uint, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	verr := &ValidationError{}
	checkName(verr, in.Name)
	checkType(verr, "type", in.Type, "Invalid category type")
	if in.BudgetLimit.Valid {
		checkBudget(verr, in.BudgetLimit.Decimal)
	}
	if in.Color != "" {
		checkColor(verr, in.Color)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	category := models.Category{
		UserID:      userID,
		Name:        in.Name,
		Type:        in.Type,
		BudgetLimit: in.BudgetLimit,
		Color:       in.Color,
		Icon:        strings.TrimSpace(in.Icon),
	}
	if category.Color == "" {
		category.Color = models.DefaultCategoryColor
	}
	if category.Icon == "" {
		category.Icon = models.DefaultCategoryIcon
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, persistenceError("create category", err)
	}
	return &category, nil
}

// Update 部分更新当前用户的类别，提供的字段按创建规则校验
func (s *CategoryService) Update(ctx context.Context, userID uint, id string, patch CategoryPatch) (*models.Category, error) {
	verr := &ValidationError{}
	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		checkName(verr, name)
		updates["name"] = name
	}
	if patch.Type != nil {
		checkType(verr, "type", *patch.Type, "Invalid category type")
		updates["type"] = *patch.Type
	}
	if patch.BudgetLimit != nil {
		checkBudget(verr, *patch.BudgetLimit)
		updates["budget_limit"] = decimal.NewNullDecimal(*patch.BudgetLimit)
	}
	if patch.Color != nil {
		color := *patch.Color
		if color == "" {
			color = models.DefaultCategoryColor
		}
		checkColor(verr, color)
		updates["color"] = color
	}
	if patch.Icon != nil {
		icon := strings.TrimSpace(*patch.Icon)
		if icon == "" {
			icon = models.DefaultCategoryIcon
		}
		updates["icon"] = icon
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return category, nil
	}

	if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		return nil, persistenceError("update category", err)
	}
	return s.Get(ctx, userID, id)
}

// Delete 删除当前用户的类别，引用它的账目保留，之后显示为未分类
func (s *CategoryService) Delete(ctx context.Context, userID uint, id string) error {
	categoryID, err := uuid.FromString(id)
	if err != nil {
		return notFound("category")
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Delete(&models.Category{})
	if result.Error != nil {
		return persistenceError("delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("category")
	}
	return nil
}

// owned 查找当前用户的类别，供账目写入时校验引用
func (s *CategoryService) owned(ctx context.Context, userID uint, ref string) (*models.Category, error) {
	categoryID, err := uuid.FromString(strings.TrimSpace(ref))
	if err != nil {
		return nil, NewValidationError("category", "Invalid category ID")
	}

	var category models.Category
	err = s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, userID).
		First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewValidationError("category", "Category not found")
	}
	if err != nil {
		return nil, persistenceError("resolve category", err)
	}
	return &category, nil
}

func checkName(verr *ValidationError, name string) {
	if name == "" {
		verr.Add("name", "Name is required")
	} else if len([]rune(name)) > 50 {
		verr.Add("name", "Name must be at most 50 characters")
	}
}

func checkType(verr *ValidationError, field, kind, message string) {
	if !models.IsValidType(kind) {
		verr.Add(field, message)
	}
}

func checkBudget(verr *ValidationError, limit decimal.Decimal) {
	if limit.IsNegative() {
		verr.Add("budgetLimit", "Budget limit must be a positive number")
	}
}

func checkColor(verr *ValidationError, color string) {
	if err := validate.Var(color, "hexcolor"); err != nil {
		verr.Add("color", "Invalid color format")
	}
}
