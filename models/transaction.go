package models

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 收支类型
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// UncategorizedName 类别无法解析时的分组名
const UncategorizedName = "Uncategorized"

// IsValidType 判断收支类型是否合法
func IsValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction 收支记录。CategoryID 不建外键，类别被删除后记录仍保留，
// 此时 Category 预加载结果为 nil
type Transaction struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uint            `json:"userId" gorm:"index:idx_transactions_user_date,priority:1;index:idx_transactions_user_category,priority:1;not null"`
	Type        string          `json:"type" gorm:"size:10;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	CategoryID  uuid.UUID       `json:"categoryId" gorm:"type:char(36);index:idx_transactions_user_category,priority:2;not null"`
	Category    *Category       `json:"category" gorm:"foreignKey:CategoryID"`
	Date        time.Time       `json:"date" gorm:"index:idx_transactions_user_date,priority:2;not null"`
	Description string          `json:"description" gorm:"size:255"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate 生成主键
func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID != uuid.Nil {
		return nil
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// CategoryName 返回关联类别名，悬空引用返回 Uncategorized
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return UncategorizedName
	}
	return t.Category.Name
}

func init() {
	// 金额以 JSON 数字输出
	decimal.MarshalJSONWithoutQuotes = true
}
