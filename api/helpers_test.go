package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"budget/config"
	"budget/database"
	"budget/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return gormDB, mock
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxOpenConns: 1,
	}, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// newTestRouter 按生产路由挂载处理器，但用固定用户代替 JWT
func newTestRouter(db *gorm.DB, userID uint, emailCfg config.EmailConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	users := service.NewUserService(db)
	categories := service.NewCategoryService(db)
	ledger := service.NewLedgerService(db, categories)
	reports := service.NewReportService(db, config.ReportConfig{})
	dashboard := service.NewDashboardService(reports, ledger)

	r := gin.New()
	g := r.Group("/api", setUserIDMiddleware(userID))

	ch := NewCategoryHandler(categories)
	g.GET("/categories", ch.List)
	g.POST("/categories", ch.Create)
	g.PUT("/categories/:id", ch.Update)
	g.DELETE("/categories/:id", ch.Delete)

	th := NewTransactionHandler(ledger)
	g.GET("/transactions", th.List)
	g.POST("/transactions", th.Create)
	g.GET("/transactions/:id", th.Get)
	g.PUT("/transactions/:id", th.Update)
	g.DELETE("/transactions/:id", th.Delete)

	dh := NewDashboardHandler(dashboard)
	g.GET("/dashboard", dh.Get)
	g.GET("/dashboard/weekly", dh.Weekly)

	rh := NewReportHandler(reports, users, service.NewEmailService(&emailCfg))
	g.GET("/reports/summary", rh.Summary)
	g.GET("/reports/category-spending", rh.CategorySpending)
	g.GET("/reports/transactions", rh.Transactions)
	g.GET("/reports/daily", rh.Daily)
	g.GET("/reports/budget", rh.Budget)
	g.GET("/reports/export", rh.Export)
	g.POST("/reports/email", rh.Email)
	return r
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = new(bytes.Buffer)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if json.Valid(w.Body.Bytes()) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func decodeData(t *testing.T, resp apiResponse, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func createCategory(t *testing.T, r *gin.Engine, name, kind string) string {
	t.Helper()
	w, resp := doRequest(t, r, "POST", "/api/categories", `{"name":"`+name+`","type":"`+kind+`"}`)
	require.Equal(t, 201, w.Code, w.Body.String())
	var c struct {
		ID string `json:"id"`
	}
	decodeData(t, resp, &c)
	return c.ID
}

func createTransaction(t *testing.T, r *gin.Engine, body string) map[string]interface{} {
	t.Helper()
	w, resp := doRequest(t, r, "POST", "/api/transactions", body)
	require.Equal(t, 201, w.Code, w.Body.String())
	var tx map[string]interface{}
	decodeData(t, resp, &tx)
	return tx
}
