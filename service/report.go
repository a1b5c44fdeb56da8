package service

import (
	"context"
	"strings"
	"time"

	"budget/aggregate"
	"budget/config"
	"budget/models"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QueryDateLayout 报表查询参数中的日期格式
const QueryDateLayout = "2006-01-02"

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// TransactionFilter 报表列表筛选条件，各项为空表示不限，多项之间为且
type TransactionFilter struct {
	Range     aggregate.DateRange
	Category  string // UUID 按 ID 匹配，否则按类别名匹配
	Type      string
	MinAmount decimal.NullDecimal
	MaxAmount decimal.NullDecimal
}

// Page 分页结果，Page 从 1 开始
type Page struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	Pages        int                  `json:"pages"`
	Limit        int                  `json:"limit"`
}

// ReportService 报表查询：按用户取数，交给 aggregate 计算
type ReportService struct {
	db           *gorm.DB
	now          func() time.Time
	defaultLimit int
	maxLimit     int
}

// NewReportService 创建报表服务
func NewReportService(db *gorm.DB, cfg config.ReportConfig) *ReportService {
	s := &ReportService{
		db:           db,
		now:          time.Now,
		defaultLimit: cfg.DefaultPageSize,
		maxLimit:     cfg.MaxPageSize,
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = defaultPageSize
	}
	if s.maxLimit <= 0 {
		s.maxLimit = maxPageSize
	}
	return s
}

// Now 报表使用的当前时间
func (s *ReportService) Now() time.Time {
	return s.now()
}

// ResolveRange 把 period/startDate/endDate 解析为区间。
// 预设周期忽略起止日期；custom 或未指定周期时使用起止日期，结束日期包含当天
func (s *ReportService) ResolveRange(period, startDate, endDate string) (aggregate.DateRange, error) {
	period = strings.TrimSpace(period)
	if !aggregate.IsKnownPeriod(period) {
		return aggregate.DateRange{}, NewValidationError("period", "Invalid period")
	}
	now := s.now()
	if rng, ok := aggregate.PresetRange(period, now); ok {
		return rng, nil
	}

	verr := &ValidationError{}
	var rng aggregate.DateRange
	if startDate = strings.TrimSpace(startDate); startDate != "" {
		start, err := time.ParseInLocation(QueryDateLayout, startDate, now.Location())
		if err != nil {
			verr.Add("startDate", "Invalid date, expected YYYY-MM-DD")
		} else {
			rng.Start = start
		}
	}
	if endDate = strings.TrimSpace(endDate); endDate != "" {
		end, err := time.ParseInLocation(QueryDateLayout, endDate, now.Location())
		if err != nil {
			verr.Add("endDate", "Invalid date, expected YYYY-MM-DD")
		} else {
			rng.End = aggregate.EndOfDay(end)
		}
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		verr.Add("endDate", "End date must not be before start date")
	}
	if err := verr.OrNil(); err != nil {
		return aggregate.DateRange{}, err
	}
	return rng, nil
}

func within(rng aggregate.DateRange) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !rng.Start.IsZero() {
			db = db.Where("date >= ?", rng.Start.UTC())
		}
		if !rng.End.IsZero() {
			db = db.Where("date <= ?", rng.End.UTC())
		}
		return db
	}
}

func ofType(kind string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if kind == "" {
			return db
		}
		return db.Where("type = ?", kind)
	}
}

// fetch 按条件取账目，带类别，按日期倒序
func (s *ReportService) fetch(ctx context.Context, op string, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Transaction, error) {
	list := []models.Transaction{}
	err := s.db.WithContext(ctx).
		Scopes(scopes...).
		Scopes(newestFirst).
		Preload("Category").
		Find(&list).Error
	if err != nil {
		return nil, persistenceError(op, err)
	}
	return list, nil
}

// InRange 区间内的全部账目
func (s *ReportService) InRange(ctx context.Context, userID uint, rng aggregate.DateRange) ([]models.Transaction, error) {
	return s.fetch(ctx, "list transactions in range", ownedBy(userID), within(rng))
}

// Summary 区间内收支汇总
func (s *ReportService) Summary(ctx context.Context, userID uint, rng aggregate.DateRange) (aggregate.Summary, error) {
	txs, err := s.InRange(ctx, userID, rng)
	if err != nil {
		return aggregate.Summary{}, err
	}
	return aggregate.Summarize(txs, rng), nil
}

// CategorySpending 区间内支出按类别分布
func (s *ReportService) CategorySpending(ctx context.Context, userID uint, rng aggregate.DateRange) ([]aggregate.CategoryAmount, error) {
	txs, err := s.fetch(ctx, "list category spending", ownedBy(userID), within(rng), ofType(models.TypeExpense))
	if err != nil {
		return nil, err
	}
	return aggregate.BreakdownByCategory(txs, rng), nil
}

// Daily 区间内按自然日的收支序列
func (s *ReportService) Daily(ctx context.Context, userID uint, rng aggregate.DateRange) ([]aggregate.DailyTotals, error) {
	txs, err := s.InRange(ctx, userID, rng)
	if err != nil {
		return nil, err
	}
	return aggregate.DailySeries(txs, rng, s.now().Location()), nil
}

// Weekly 最近 7 天按星期几的净额
func (s *ReportService) Weekly(ctx context.Context, userID uint) ([]aggregate.WeekdayAmount, error) {
	now := s.now()
	txs, err := s.InRange(ctx, userID, aggregate.LastSevenDays(now))
	if err != nil {
		return nil, err
	}
	return aggregate.WeekdaySeries(txs, now), nil
}

// Budget 设置了预算的支出类别在区间内的执行情况
func (s *ReportService) Budget(ctx context.Context, userID uint, rng aggregate.DateRange) ([]aggregate.BudgetStatus, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("type = ? AND budget_limit IS NOT NULL", models.TypeExpense).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, persistenceError("list budget categories", err)
	}

	txs, err := s.fetch(ctx, "list budget spending", ownedBy(userID), within(rng), ofType(models.TypeExpense))
	if err != nil {
		return nil, err
	}
	return aggregate.CompareBudgets(categories, txs, rng), nil
}

// Transactions 分页筛选账目。页码超出范围时返回空列表，total 照常返回
func (s *ReportService) Transactions(ctx context.Context, userID uint, filter TransactionFilter, page, limit int) (*Page, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Scopes(s.matching(userID, filter)).
		Count(&total).Error
	if err != nil {
		return nil, persistenceError("count transactions", err)
	}

	pages := aggregate.PageCount(total, limit)
	list := []models.Transaction{}
	// 超出末页直接返回空列表，大页码也不会让偏移量溢出
	if page > pages {
		return &Page{Transactions: list, Total: total, Page: page, Pages: pages, Limit: limit}, nil
	}

	err = s.db.WithContext(ctx).
		Scopes(s.matching(userID, filter), newestFirst).
		Preload("Category").
		Offset(aggregate.Offset(page, limit)).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, persistenceError("list transactions page", err)
	}

	return &Page{
		Transactions: list,
		Total:        total,
		Page:         page,
		Pages:        pages,
		Limit:        limit,
	}, nil
}

// AllTransactions 不分页的筛选结果，用于导出
func (s *ReportService) AllTransactions(ctx context.Context, userID uint, filter TransactionFilter) ([]models.Transaction, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	return s.fetch(ctx, "export transactions", s.matching(userID, filter))
}

func (s *ReportService) matching(userID uint, filter TransactionFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(ownedBy(userID), within(filter.Range), ofType(filter.Type))
		if ref := strings.TrimSpace(filter.Category); ref != "" {
			if id, err := uuid.FromString(ref); err == nil {
				db = db.Where("category_id = ?", id)
			} else {
				names := db.Session(&gorm.Session{NewDB: true}).
					Model(&models.Category{}).
					Select("id").
					Where("user_id = ? AND name = ?", userID, ref)
				db = db.Where("category_id IN (?)", names)
			}
		}
		if filter.MinAmount.Valid {
			db = db.Where("amount >= ?", filter.MinAmount.Decimal)
		}
		if filter.MaxAmount.Valid {
			db = db.Where("amount <= ?", filter.MaxAmount.Decimal)
		}
		return db
	}
}

func checkFilter(filter TransactionFilter) error {
	verr := &ValidationError{}
	if filter.Type != "" {
		checkType(verr, "type", filter.Type, "Type must be income or expense")
	}
	if filter.MinAmount.Valid && filter.MinAmount.Decimal.IsNegative() {
		verr.Add("minAmount", "Minimum amount must not be negative")
	}
	if filter.MaxAmount.Valid && filter.MaxAmount.Decimal.IsNegative() {
		verr.Add("maxAmount", "Maximum amount must not be negative")
	}
	if filter.MinAmount.Valid && filter.MaxAmount.Valid &&
		filter.MinAmount.Decimal.GreaterThan(filter.MaxAmount.Decimal) {
		verr.Add("maxAmount", "Maximum amount must not be less than minimum amount")
	}
	return verr.OrNil()
}
