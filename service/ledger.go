package service

import (
	"context"
	"strings"
	"time"

	"budget/models"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionInput 创建账目，Date 为 nil 时取当前时间
type TransactionInput struct {
	Type        string
	Amount      decimal.Decimal
	Category    string
	Date        *time.Time
	Description string
}

// TransactionPatch 部分更新，nil 表示未提供
type TransactionPatch struct {
	Type        *string
	Amount      *decimal.Decimal
	Category    *string
	Date        *time.Time
	Description *string
}

// LedgerService 账目读写，所有操作按 userID 隔离
type LedgerService struct {
	db         *gorm.DB
	categories *CategoryService
	now        func() time.Time
}

// NewLedgerService 创建账目服务
func NewLedgerService(db *gorm.DB, categories *CategoryService) *LedgerService {
	return &LedgerService{db: db, categories: categories, now: time.Now}
}

func ownedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("date DESC").Order("created_at DESC")
}

// List 当前用户全部账目，带类别，按日期倒序
func (s *LedgerService) List(ctx context.Context, userID uint) ([]models.Transaction, error) {
	list := []models.Transaction{}
	err := s.db.WithContext(ctx).
		Scopes(ownedBy(userID), newestFirst).
		Preload("Category").
		Find(&list).Error
	if err != nil {
		return nil, persistenceError("list transactions", err)
	}
	return list, nil
}

// Recent 最近 n 条账目，不限日期
func (s *LedgerService) Recent(ctx context.Context, userID uint, n int) ([]models.Transaction, error) {
	list := []models.Transaction{}
	err := s.db.WithContext(ctx).
		Scopes(ownedBy(userID), newestFirst).
		Preload("Category").
		Limit(n).
		Find(&list).Error
	if err != nil {
		return nil, persistenceError("list recent transactions", err)
	}
	return list, nil
}

// Get 按 ID 获取当前用户的账目
func (s *LedgerService) Get(ctx context.Context, userID uint, id string) (*models.Transaction, error) {
	txID, err := uuid.FromString(id)
	if err != nil {
		return nil, notFound("transaction")
	}

	var tx models.Transaction
	err = s.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Preload("Category").
		Where("id = ?", txID).
		First(&tx).Error
	if err != nil {
		return nil, lookupError("transaction", "get transaction", err)
	}
	return &tx, nil
}

// Create 校验并创建账目，类别必须属于当前用户
func (s *LedgerService) Create(ctx context.Context, userID uint, in TransactionInput) (*models.Transaction, error) {
	verr := &ValidationError{}
	checkType(verr, "type", in.Type, "Type must be income or expense")
	checkAmount(verr, in.Amount)
	if strings.TrimSpace(in.Category) == "" {
		verr.Add("category", "Category is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	category, err := s.categories.owned(ctx, userID, in.Category)
	if err != nil {
		return nil, err
	}

	date := s.now()
	if in.Date != nil {
		date = *in.Date
	}
	// 统一按 UTC 存储，sqlite 按文本比较日期
	date = date.UTC()

	tx := models.Transaction{
		UserID:      userID,
		Type:        in.Type,
		Amount:      in.Amount,
		CategoryID:  category.ID,
		Date:        date,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&tx).Error; err != nil {
		return nil, persistenceError("create transaction", err)
	}
	tx.Category = category
	return &tx, nil
}

// Update 部分更新账目。先按用户取到记录再校验，金额显式为 0 时拒绝
func (s *LedgerService) Update(ctx context.Context, userID uint, id string, patch TransactionPatch) (*models.Transaction, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	updates := map[string]interface{}{}
	if patch.Type != nil {
		checkType(verr, "type", *patch.Type, "Type must be income or expense")
		updates["type"] = *patch.Type
	}
	if patch.Amount != nil {
		checkAmount(verr, *patch.Amount)
		updates["amount"] = *patch.Amount
	}
	if patch.Date != nil {
		updates["date"] = patch.Date.UTC()
	}
	if patch.Description != nil {
		updates["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil && strings.TrimSpace(*patch.Category) == "" {
		verr.Add("category", "Category is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if patch.Category != nil {
		category, err := s.categories.owned(ctx, userID, *patch.Category)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = category.ID
	}
	if len(updates) == 0 {
		return existing, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Scopes(ownedBy(userID)).
		Where("id = ?", existing.ID).
		Updates(updates).Error
	if err != nil {
		return nil, persistenceError("update transaction", err)
	}
	return s.Get(ctx, userID, id)
}

// Delete 删除当前用户的账目
func (s *LedgerService) Delete(ctx context.Context, userID uint, id string) error {
	txID, err := uuid.FromString(id)
	if err != nil {
		return notFound("transaction")
	}

	result := s.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("id = ?", txID).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return persistenceError("delete transaction", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("transaction")
	}
	return nil
}

func checkAmount(verr *ValidationError, amount decimal.Decimal) {
	if !amount.IsPositive() {
		verr.Add("amount", "Amount must be a positive number")
	}
}
