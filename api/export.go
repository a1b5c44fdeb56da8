package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"budget/middleware"
	"budget/models"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var exportHeaders = []string{"ID", "Date", "Type", "Category", "Amount", "Description"}

// Export 导出筛选后的全部账目
// @Summary 导出账目
// @Description 按报表筛选条件导出全部匹配账目，不分页
// @Tags 报表
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv / xlsx" default(csv)
// @Param period query string false "week / month / quarter / year / custom"
// @Param startDate query string false "开始日期 YYYY-MM-DD"
// @Param endDate query string false "结束日期 YYYY-MM-DD（含当天）"
// @Param category query string false "类别 ID 或名称"
// @Param type query string false "income / expense"
// @Param minAmount query number false "最小金额（含）"
// @Param maxAmount query number false "最大金额（含）"
// @Success 200 {file} file "导出文件"
// @Failure 400 {object} Response{data=ValidationErrors} "参数错误"
// @Router /api/reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	q, ok := bindReportQuery(c)
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(q.Format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		ValidationFailed(c, []service.FieldError{{Field: "format", Message: "Format must be csv or xlsx"}})
		return
	}
	filter, err := h.filterOf(q)
	if err != nil {
		respondError(c, err, "Invalid filter")
		return
	}

	txs, err := h.reports.AllTransactions(c.Request.Context(), middleware.GetCurrentUserID(c), filter)
	if err != nil {
		respondError(c, err, "Failed to load transactions")
		return
	}

	filename := "transactions_" + h.reports.Now().Format("20060102")
	switch format {
	case "xlsx":
		data, err := transactionsXLSX(txs)
		if err != nil {
			respondError(c, err, "Failed to build spreadsheet")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", filename))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		data, err := transactionsCSV(txs)
		if err != nil {
			respondError(c, err, "Failed to build CSV")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	}
}

func exportRow(tx models.Transaction) []string {
	return []string{
		tx.ID.String(),
		tx.Date.Format(exportTimeLayout),
		tx.Type,
		tx.CategoryName(),
		tx.Amount.StringFixed(2),
		tx.Description,
	}
}

func transactionsCSV(txs []models.Transaction) ([]byte, error) {
	buf := new(bytes.Buffer)
	// 添加 BOM 以便 Excel 识别 UTF-8
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	if err := writer.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if err := writer.Write(exportRow(tx)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func transactionsXLSX(txs []models.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4CAF50"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return nil, err
	}

	widths := map[string]float64{"A": 38, "B": 20, "C": 10, "D": 18, "E": 12, "F": 30}
	for col, w := range widths {
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, err
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", headerStyle); err != nil {
		return nil, err
	}

	income, expense := decimal.Zero, decimal.Zero
	for i, tx := range txs {
		row := i + 2
		cells := []interface{}{
			tx.ID.String(),
			tx.Date.Format(exportTimeLayout),
			tx.Type,
			tx.CategoryName(),
			tx.Amount.InexactFloat64(),
			tx.Description,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return nil, err
		}
		if tx.Type == models.TypeIncome {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}

	// 合计行：收入、支出、结余
	totalRow := len(txs) + 2
	totals := [][]interface{}{
		{"Total income", income.StringFixed(2)},
		{"Total expenses", expense.StringFixed(2)},
		{"Balance", income.Sub(expense).StringFixed(2)},
	}
	for i, t := range totals {
		row := totalRow + i
		if err := f.SetCellValue(sheet, fmt.Sprintf("D%d", row), t[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("E%d", row), t[1]); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("E%d", row), totalStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
