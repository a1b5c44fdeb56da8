// Package aggregate 从账目列表派生汇总、类别分布、按日期分桶的序列和预算对比。
// 所有函数都是纯函数，不访问存储，调用方负责按用户取数。
package aggregate

import (
	"sort"
	"time"

	"budget/models"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Summary 区间内收入、支出与结余
type Summary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Balance       decimal.Decimal `json:"balance"`
}

// CategoryAmount 按类别汇总的支出
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// WeekdayAmount 仪表盘周图：每天一个净额
type WeekdayAmount struct {
	Day    string          `json:"day"`
	Amount decimal.Decimal `json:"amount"`
}

// DailyTotals 报表折线图：每天的收入与支出
type DailyTotals struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// BudgetStatus 预算与实际支出对比
type BudgetStatus struct {
	CategoryID uuid.UUID       `json:"categoryId"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Budget     decimal.Decimal `json:"budget"`
	Actual     decimal.Decimal `json:"actual"`
	Percentage decimal.Decimal `json:"percentage"`
	OverBudget bool            `json:"overBudget"`
}

// DailyDateLayout 日分桶标签格式
const DailyDateLayout = "2006-01-02"

// Summarize 计算区间内的收支汇总，空集合三项均为 0
func Summarize(txs []models.Transaction, rng DateRange) Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, tx := range txs {
		if !rng.Contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case models.TypeIncome:
			income = income.Add(tx.Amount)
		case models.TypeExpense:
			expenses = expenses.Add(tx.Amount)
		}
	}
	return Summary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Balance:       income.Sub(expenses),
	}
}

// BreakdownByCategory 区间内支出按类别名分组求和，顺序为首次出现的顺序。
// 悬空引用归入 Uncategorized。
func BreakdownByCategory(txs []models.Transaction, rng DateRange) []CategoryAmount {
	result := []CategoryAmount{}
	index := make(map[string]int)
	for _, tx := range txs {
		if tx.Type != models.TypeExpense || !rng.Contains(tx.Date) {
			continue
		}
		name := tx.CategoryName()
		i, ok := index[name]
		if !ok {
			i = len(result)
			index[name] = i
			result = append(result, CategoryAmount{Name: name, Amount: decimal.Zero})
		}
		result[i].Amount = result[i].Amount.Add(tx.Amount)
	}
	return result
}

// WeekdaySeries 最近 7 天按星期几分桶，固定 Sun..Sat 七个桶，
// 每桶为 |收入-支出|
func WeekdaySeries(txs []models.Transaction, now time.Time) []WeekdayAmount {
	rng := LastSevenDays(now)
	var net [7]decimal.Decimal
	for _, tx := range txs {
		if !rng.Contains(tx.Date) {
			continue
		}
		day := tx.Date.In(now.Location()).Weekday()
		switch tx.Type {
		case models.TypeIncome:
			net[day] = net[day].Add(tx.Amount)
		case models.TypeExpense:
			net[day] = net[day].Sub(tx.Amount)
		}
	}

	series := make([]WeekdayAmount, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		series = append(series, WeekdayAmount{
			Day:    d.String()[:3],
			Amount: net[d].Abs(),
		})
	}
	return series
}

// DailySeries 按自然日分桶，只包含有记录的日期，按日期升序
func DailySeries(txs []models.Transaction, rng DateRange, loc *time.Location) []DailyTotals {
	if loc == nil {
		loc = time.Local
	}
	buckets := make(map[string]*DailyTotals)
	for _, tx := range txs {
		if !rng.Contains(tx.Date) {
			continue
		}
		label := tx.Date.In(loc).Format(DailyDateLayout)
		b, ok := buckets[label]
		if !ok {
			b = &DailyTotals{Date: label, Income: decimal.Zero, Expense: decimal.Zero}
			buckets[label] = b
		}
		switch tx.Type {
		case models.TypeIncome:
			b.Income = b.Income.Add(tx.Amount)
		case models.TypeExpense:
			b.Expense = b.Expense.Add(tx.Amount)
		}
	}

	series := make([]DailyTotals, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	// YYYY-MM-DD 字典序即日期序
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

// CompareBudgets 对设置了预算的支出类别计算区间内实际支出。
// 按类别 ID 归集，同名类别互不影响。
func CompareBudgets(categories []models.Category, txs []models.Transaction, rng DateRange) []BudgetStatus {
	spent := make(map[uuid.UUID]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != models.TypeExpense || !rng.Contains(tx.Date) {
			continue
		}
		spent[tx.CategoryID] = spent[tx.CategoryID].Add(tx.Amount)
	}

	hundred := decimal.NewFromInt(100)
	result := []BudgetStatus{}
	for _, c := range categories {
		if c.Type != models.TypeExpense || !c.BudgetLimit.Valid {
			continue
		}
		budget := c.BudgetLimit.Decimal
		actual := spent[c.ID]
		percentage := decimal.Zero
		if budget.IsPositive() {
			percentage = actual.Div(budget).Mul(hundred).Round(2)
		}
		result = append(result, BudgetStatus{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Budget:     budget,
			Actual:     actual,
			Percentage: percentage,
			OverBudget: actual.GreaterThan(budget),
		})
	}
	return result
}

// PageCount 总页数 ceil(total/size)
func PageCount(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Offset 1 起始页码对应的偏移量
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}
