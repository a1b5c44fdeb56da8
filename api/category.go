package api

import (
	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CategoryHandler 收支类别
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler 创建类别处理器
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CategoryCreateRequest 创建类别请求
type CategoryCreateRequest struct {
	Name        string              `json:"name" binding:"required,max=50" example:"Groceries"`
	Type        string              `json:"type" binding:"required,oneof=income expense" example:"expense"`
	BudgetLimit decimal.NullDecimal `json:"budgetLimit" swaggertype:"number" example:"300"`
	Color       string              `json:"color" binding:"omitempty,hexcolor" example:"#4CAF50"`
	Icon        string              `json:"icon" example:"Shopping"`
}

// CategoryUpdateRequest 更新类别请求，未出现的字段保持不变
type CategoryUpdateRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=50"`
	Type        *string          `json:"type" binding:"omitempty,oneof=income expense"`
	BudgetLimit *decimal.Decimal `json:"budgetLimit" swaggertype:"number"`
	Color       *string          `json:"color" binding:"omitempty,hexcolor"`
	Icon        *string          `json:"icon"`
}

// List 当前用户的类别
// @Summary 获取类别列表
// @Description 获取当前用户的类别，可按收支类型过滤
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param type query string false "income / expense"
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 400 {object} Response{data=ValidationErrors} "类型无效"
// @Failure 401 {object} Response "未授权"
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	list, err := h.categories.List(c.Request.Context(), userID, c.Query("type"))
	if err != nil {
		respondError(c, err, "Failed to load categories")
		return
	}
	Success(c, list)
}

// Create 创建类别
// @Summary 创建类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryCreateRequest true "类别信息"
// @Success 201 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response{data=ValidationErrors} "参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}

	category, err := h.categories.Create(c.Request.Context(), userID, service.CategoryInput{
		Name:        req.Name,
		Type:        req.Type,
		BudgetLimit: req.BudgetLimit,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}
	Created(c, category)
}

// Update 部分更新类别
// @Summary 更新类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "类别ID"
// @Param request body CategoryUpdateRequest true "需要修改的字段"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 400 {object} Response{data=ValidationErrors} "参数错误"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingFailed(c, err)
		return
	}

	category, err := h.categories.Update(c.Request.Context(), userID, c.Param("id"), service.CategoryPatch{
		Name:        req.Name,
		Type:        req.Type,
		BudgetLimit: req.BudgetLimit,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		respondError(c, err, "Failed to update category")
		return
	}
	Success(c, category)
}

// Delete 删除类别，引用它的账目保留
// @Summary 删除类别
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path string true "类别ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	if err := h.categories.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete category")
		return
	}
	SuccessWithMessage(c, "Category removed", nil)
}
