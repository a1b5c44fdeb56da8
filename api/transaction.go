package api

import (
	"strings"
	"time"

	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionHandler 收支账目
type TransactionHandler struct {
	ledger *service.LedgerService
}

// NewTransactionHandler 创建账目处理器
func NewTransactionHandler(ledger *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// TransactionCreateRequest 创建账目请求
type TransactionCreateRequest struct {
	Type        string          `json:"type" binding:"required,oneof=income expense" example:"expense"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"42.50"`
	Category    string          `json:"category" binding:"required" example:"6f1c2d3e-0000-4000-8000-000000000000"`
	Date        string          `json:"date" example:"2024-03-15T12:00:00Z"` // RFC3339 或 YYYY-MM-DD，为空取当前时间
	Description string          `json:"description" binding:"max=255" example:"Weekly shop"`
}

// TransactionUpdateRequest 更新账目请求，未出现的字段保持不变
type TransactionUpdateRequest struct {
	Type        *string          `json:"type" binding:"omitempty,oneof=income expense"`
	Amount      *decimal.Decimal `json:"amount" swaggertype:"number"`
	Category    *string          `json:"category"`
	Date        *string          `json:"date"`
	Description *string          `json:"description" binding:"omitempty,max=255"`
}

// parseEntryDate 接受 RFC3339 时间或本地日期
func parseEntryDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(service.QueryDateLayout, s, time.Local)
	if err != nil {
		return nil, service.NewValidationError("date", "Invalid date")
	}
	return &t, nil
}

// List 当前用户全部账目
// @Summary 获取账目列表
// @Description 当前用户全部账目，按日期倒序，带类别信息
// @Tags 账目
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	list, err := h.ledger.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load transactions")
		return
	}
	Success(c, list)
}

// Get 单条账目
// @Summary 获取账目
// @Tags 账目
// @Produce json
// @Security BearerAuth
// @Param id path string true "账目ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 404 {object} Response "账目不存在"
// @Router /api/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	tx, err := h.ledger.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load transaction")
		return
	}
	Success(c, tx)
}

// Create 创建账目
// @Summary 创建账目
// @Tags 账目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionCreateRequest true "账目信息"
// @Success 201 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response{data=ValidationErrors} "参数错误或类别不存在"
// @Router /api/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}
	date, err := parseEntryDate(req.Date)
	if err != nil {
		respondError(c, err, "Invalid date")
		return
	}

	tx, err := h.ledger.Create(c.Request.Context(), userID, service.TransactionInput{
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err, "Failed to create transaction")
		return
	}
	Created(c, tx)
}

// Update 部分更新账目
// @Summary 更新账目
// @Description 金额显式传 0 返回 400，原金额不变
// @Tags 账目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "账目ID"
// @Param request body TransactionUpdateRequest true "需要修改的字段"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response{data=ValidationErrors} "参数错误"
// @Failure 404 {object} Response "账目不存在"
// @Router /api/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}

	patch := service.TransactionPatch{
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != nil {
		date, err := parseEntryDate(*req.Date)
		if err != nil {
			respondError(c, err, "Invalid date")
			return
		}
		patch.Date = date
	}

	tx, err := h.ledger.Update(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		respondError(c, err, "Failed to update transaction")
		return
	}
	Success(c, tx)
}

// Delete 删除账目
// @Summary 删除账目
// @Tags 账目
// @Produce json
// @Security BearerAuth
// @Param id path string true "账目ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "账目不存在"
// @Router /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	if err := h.ledger.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete transaction")
		return
	}
	SuccessWithMessage(c, "Transaction removed", nil)
}
