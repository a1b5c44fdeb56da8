package api

import (
	"fmt"
	"strconv"
	"strings"

	"budget/aggregate"
	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ReportHandler 报表
type ReportHandler struct {
	reports *service.ReportService
	users   *service.UserService
	email   *service.EmailService
}

// NewReportHandler 创建报表处理器
func NewReportHandler(reports *service.ReportService, users *service.UserService, email *service.EmailService) *ReportHandler {
	return &ReportHandler{reports: reports, users: users, email: email}
}

// ReportQuery 报表查询参数。前端会传空字符串，空值一律视为未提供
type ReportQuery struct {
	Period    string `form:"period"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Category  string `form:"category"`
	Type      string `form:"type"`
	MinAmount string `form:"minAmount"`
	MaxAmount string `form:"maxAmount"`
	Page      string `form:"page"`
	Limit     string `form:"limit"`
	Format    string `form:"format"`
}

// rangeOf 解析周期参数
func (h *ReportHandler) rangeOf(q ReportQuery) (aggregate.DateRange, error) {
	return h.reports.ResolveRange(q.Period, q.StartDate, q.EndDate)
}

// filterOf 解析列表筛选参数
func (h *ReportHandler) filterOf(q ReportQuery) (service.TransactionFilter, error) {
	verr := &service.ValidationError{}
	rng, err := h.rangeOf(q)
	if err != nil {
		return service.TransactionFilter{}, err
	}

	filter := service.TransactionFilter{
		Range:    rng,
		Category: strings.TrimSpace(q.Category),
		Type:     strings.TrimSpace(q.Type),
	}
	filter.MinAmount = parseAmount(verr, "minAmount", q.MinAmount)
	filter.MaxAmount = parseAmount(verr, "maxAmount", q.MaxAmount)
	if err := verr.OrNil(); err != nil {
		return service.TransactionFilter{}, err
	}
	return filter, nil
}

func parseAmount(verr *service.ValidationError, field, raw string) decimal.NullDecimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Add(field, "Must be a number")
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func parsePositiveInt(verr *service.ValidationError, field, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		verr.Add(field, fmt.Sprintf("%s must be a positive integer", field))
		return 0
	}
	return n
}

func bindReportQuery(c *gin.Context) (ReportQuery, bool) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingFailed(c, err)
		return q, false
	}
	return q, true
}

// Summary 区间收支汇总
// @Summary 收支汇总
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param period query string false "week / month / quarter / year / custom"
// @Param startDate query string false "开始日期 YYYY-MM-DD"
// @Param endDate query string false "结束日期 YYYY-MM-DD（含当天）"
// @Success 200 {object} Response{data=aggregate.Summary} "获取成功"
// @Failure 400 {object} Response{data=ValidationErrors} "参数错误"
// @Router /api/reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	q, ok := bindReportQuery(c)
	if !ok {
		return
	}
	rng, err := h.rangeOf(q)
	if err != nil {
		respondError(c, err, "Invalid period")
		return
	}

	summary, err := h.reports.Summary(c.Request.Context(), middleware.GetCurrentUserID(c), rng)
	if err != nil {
		respondError(c, err, "Failed to load summary")
		return
	}
	Success(c, summary)
}

// CategorySpending 区间支出按类别分布
// @Summary 支出类别分布
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param period query string false "week / month / quarter / year / custom"
// @Param startDate query string false "开始日期 YYYY-MM-DD"
// @Param endDate query string false "结束日期 YYYY-MM-DD（含当天）"
// @Success 200 {object} Response{data=[]aggregate.CategoryAmount} "获取成功"
// @Router /api/reports/category-spending [get]
func (h *ReportHandler) CategorySpending(c *gin.Context) {
	q, ok := bindReportQuery(c)
	if !ok {
		return
	}
	rng, err := h.rangeOf(q)
	if err != nil {
		respondError(c, err, "Invalid period")
		return
	}

	breakdown, err := h.reports.CategorySpending(c.Request.Context(), middleware.GetCurrentUserID(c), rng)
	if err != nil {
		respondError(c, err, "Failed to load category spending")
		return
	}
	Success(c, breakdown)
}

// Daily 按日收支序列
// @Summary 按日收支
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param period query string false "week / month / quarter / year / custom"
// @Param startDate query string false "开始日期 YYYY-MM-DD"
// @Param endDate query string false "结束日期 YYYY-MM-DD（含当天）"
// @Success 200 {object} Response{data=[]aggregate.DailyTotals} "获取成功"
// @Router /api/reports/daily [get]
func (h *ReportHandler) Daily(c *gin.Context) {
	q, ok := bindReportQuery(c)
	if !ok {
		return
	}
	rng, err := h.rangeOf(q)
	if err != nil {
		respondError(c, err, "Invalid period")
		return
	}

	series, err := h.reports.Daily(c.Request.Context(), middleware.GetCurrentUserID(c), rng)
	if err != nil {
		respondError(c, err, "Failed to load daily series")
		return
	}
	Success(c, series)
}

// Budget 预算执行情况
// @Summary 预算对比
// @Description 设置了预算的支出类别在区间内的实际支出与占比
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param period query string false "week / month / quarter / year / custom"
// @Param startDate query string false "开始日期 YYYY-MM-DD"
// @Param endDate query string false "结束日期 YYYY-MM-DD（含当天）"
// @Success 200 {object} Response{data=[]aggregate.BudgetStatus} "获取成功"
// @Router /api/reports/budget [get]
func (h *ReportHandler) Budget(c *gin.Context) {
	q, ok := bindReportQuery(c)
	if !ok {
		return
	}
	rng, err := h.rangeOf(q)
	if err != nil {
		respondError(c, err, "Invalid period")
		return
	}

	statuses, err := h.reports.Budget(c.Request.Context(), middleware.GetCurrentUserID(c), rng)
	if err != nil {
		respondError(c, err, "Failed to load budget comparison")
		return
	}
	Success(c, statuses)
}

// Transactions 分页筛选账目
// @Summary 账目分页查询
// @Description 条件之间为且；category 为 UUID 时按 ID 匹配，否则按类别名匹配
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param period query string false "week / month / quarter / year / custom"
// @Param startDate query string false "开始日期 YYYY-MM-DD"
// @Param endDate query string false "结束日期 YYYY-MM-DD（含当天）"
// @Param category query string false "类别 ID 或名称"
// @Param type query string false "income / expense"
// @Param minAmount query number false "最小金额（含）"
// @Param maxAmount query number false "最大金额（含）"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量，最大 100" default(10)
// @Success 200 {object} Response{data=service.Page} "获取成功"
// @Failure 400 {object} Response{data=ValidationErrors} "参数错误"
// @Router /api/reports/transactions [get]
func (h *ReportHandler) Transactions(c *gin.Context) {
	q, ok := bindReportQuery(c)
	if !ok {
		return
	}
	filter, err := h.filterOf(q)
	if err != nil {
		respondError(c, err, "Invalid filter")
		return
	}
	verr := &service.ValidationError{}
	page := parsePositiveInt(verr, "page", q.Page)
	limit := parsePositiveInt(verr, "limit", q.Limit)
	if err := verr.OrNil(); err != nil {
		respondError(c, err, "Invalid pagination")
		return
	}

	result, err := h.reports.Transactions(c.Request.Context(), middleware.GetCurrentUserID(c), filter, page, limit)
	if err != nil {
		respondError(c, err, "Failed to load transactions")
		return
	}
	Success(c, result)
}

// Email 把区间汇总发到当前用户邮箱
// @Summary 发送报表邮件
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param period query string false "week / month / quarter / year / custom"
// @Param startDate query string false "开始日期 YYYY-MM-DD"
// @Param endDate query string false "结束日期 YYYY-MM-DD（含当天）"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "当前用户没有邮箱"
// @Failure 503 {object} Response "邮件服务未启用"
// @Router /api/reports/email [post]
func (h *ReportHandler) Email(c *gin.Context) {
	if !h.email.Enabled() {
		respondError(c, service.ErrEmailDisabled, "Email delivery is not configured")
		return
	}
	q, ok := bindReportQuery(c)
	if !ok {
		return
	}
	rng, err := h.rangeOf(q)
	if err != nil {
		respondError(c, err, "Invalid period")
		return
	}

	ctx := c.Request.Context()
	userID := middleware.GetCurrentUserID(c)
	user, err := h.users.Get(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}
	if user.Email == "" {
		BadRequest(c, "No email address on this account")
		return
	}

	txs, err := h.reports.InRange(ctx, userID, rng)
	if err != nil {
		respondError(c, err, "Failed to load report")
		return
	}

	err = h.email.SendReportEmail(service.ReportEmail{
		To:         user.Email,
		Name:       user.Name,
		Period:     periodLabel(rng),
		Summary:    aggregate.Summarize(txs, rng),
		Categories: aggregate.BreakdownByCategory(txs, rng),
	})
	if err != nil {
		respondError(c, err, "Failed to send email")
		return
	}
	SuccessWithMessage(c, "Report sent to "+user.Email, nil)
}

func periodLabel(rng aggregate.DateRange) string {
	start, end := "beginning", "today"
	if !rng.Start.IsZero() {
		start = rng.Start.Format(service.QueryDateLayout)
	}
	if !rng.End.IsZero() {
		end = rng.End.Format(service.QueryDateLayout)
	}
	return start + " - " + end
}
