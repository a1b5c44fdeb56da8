package api

import (
	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 仪表盘
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get 当月概览
// @Summary 仪表盘
// @Description 当月收支汇总、支出类别分布和最近 5 条账目
// @Tags 仪表盘
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Dashboard} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	dash, err := h.dashboard.Get(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	Success(c, dash)
}

// Weekly 最近 7 天按星期几的净额
// @Summary 周收支图
// @Description 固定 7 项，Sun 到 Sat，每项为当天收入与支出之差的绝对值
// @Tags 仪表盘
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]aggregate.WeekdayAmount} "获取成功"
// @Router /api/dashboard/weekly [get]
func (h *DashboardHandler) Weekly(c *gin.Context) {
	series, err := h.dashboard.Weekly(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "Failed to load weekly series")
		return
	}
	Success(c, series)
}
