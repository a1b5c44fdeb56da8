package models

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// DefaultCategoryColor 未指定颜色时使用
	DefaultCategoryColor = "#4CAF50"
	// DefaultCategoryIcon 未指定图标时使用
	DefaultCategoryIcon = "Shopping"
)

// Category 用户自定义的收支类别
type Category struct {
	ID          uuid.UUID           `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uint                `json:"userId" gorm:"index:idx_categories_user_type,priority:1;not null"`
	Name        string              `json:"name" gorm:"size:50;not null"`
	Type        string              `json:"type" gorm:"size:10;index:idx_categories_user_type,priority:2;not null"`
	BudgetLimit decimal.NullDecimal `json:"budgetLimit" gorm:"type:decimal(12,2)"`
	Color       string              `json:"color" gorm:"size:20;default:#4CAF50"`
	Icon        string              `json:"icon" gorm:"size:50;default:Shopping"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt      `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// BeforeCreate 生成主键
func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID != uuid.Nil {
		return nil
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}
