package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"budget/config"
	"budget/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type pageResponse struct {
	Transactions []map[string]interface{} `json:"transactions"`
	Total        int64                    `json:"total"`
	Page         int                      `json:"page"`
	Pages        int                      `json:"pages"`
	Limit        int                      `json:"limit"`
}

func TestReportHandler_TransactionsPagination(t *testing.T) {
	db := setupSQLiteDB(t)
	r := newTestRouter(db, 1, config.EmailConfig{})
	groceries := createCategory(t, r, "Groceries", "expense")
	for i := 1; i <= 25; i++ {
		createTransaction(t, r, fmt.Sprintf(`{"type":"expense","amount":%d,"category":"%s"}`, i, groceries))
	}

	w, resp := doRequest(t, r, "GET", "/api/reports/transactions", "")
	require.Equal(t, 200, w.Code, w.Body.String())
	var page pageResponse
	decodeData(t, resp, &page)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Len(t, page.Transactions, 10)

	w, resp = doRequest(t, r, "GET", "/api/reports/transactions?page=3", "")
	require.Equal(t, 200, w.Code)
	decodeData(t, resp, &page)
	assert.Len(t, page.Transactions, 5)

	w, resp = doRequest(t, r, "GET", "/api/reports/transactions?page=4", "")
	require.Equal(t, 200, w.Code)
	page = pageResponse{}
	decodeData(t, resp, &page)
	assert.Empty(t, page.Transactions)
	assert.NotNil(t, page.Transactions)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.Pages)

	w, resp = doRequest(t, r, "GET", "/api/reports/transactions?page=922337203685477582", "")
	require.Equal(t, 200, w.Code)
	page = pageResponse{}
	decodeData(t, resp, &page)
	assert.Empty(t, page.Transactions)
	assert.Equal(t, int64(25), page.Total)
}

func TestReportHandler_TransactionsFilters(t *testing.T) {
	db := setupSQLiteDB(t)
	r := newTestRouter(db, 1, config.EmailConfig{})
	groceries := createCategory(t, r, "Groceries", "expense")
	rent := createCategory(t, r, "Rent", "expense")
	salary := createCategory(t, r, "Salary", "income")

	createTransaction(t, r, `{"type":"expense","amount":20,"category":"`+groceries+`"}`)
	createTransaction(t, r, `{"type":"expense","amount":80,"category":"`+groceries+`"}`)
	createTransaction(t, r, `{"type":"expense","amount":900,"category":"`+rent+`"}`)
	createTransaction(t, r, `{"type":"income","amount":3000,"category":"`+salary+`"}`)

	cases := []struct {
		name  string
		query string
		total int64
	}{
		{"blank params are ignored", "?period=&startDate=&endDate=&category=&type=&minAmount=&maxAmount=&page=&limit=", 4},
		{"category by name", "?category=Groceries", 2},
		{"category by id", "?category=" + rent, 1},
		{"type", "?type=income", 1},
		{"amount range", "?minAmount=50&maxAmount=1000", 2},
		{"combined", "?category=Groceries&minAmount=50", 1},
		{"unknown category name", "?category=Travel", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := doRequest(t, r, "GET", "/api/reports/transactions"+tc.query, "")
			require.Equal(t, 200, w.Code, w.Body.String())
			var page pageResponse
			decodeData(t, resp, &page)
			assert.Equal(t, tc.total, page.Total)
		})
	}
}

func TestReportHandler_InvalidQuery(t *testing.T) {
	db := setupSQLiteDB(t)
	r := newTestRouter(db, 1, config.EmailConfig{})

	paths := []string{
		"/api/reports/summary?period=fortnight",
		"/api/reports/summary?period=custom&startDate=2024-03-10&endDate=2024-03-01",
		"/api/reports/daily?period=custom&startDate=yesterday",
		"/api/reports/transactions?minAmount=abc",
		"/api/reports/transactions?minAmount=100&maxAmount=10",
		"/api/reports/transactions?type=transfer",
		"/api/reports/transactions?page=0",
		"/api/reports/export?format=pdf",
	}
	for _, path := range paths {
		w, resp := doRequest(t, r, "GET", path, "")
		assert.Equal(t, 400, w.Code, path)
		var verrs ValidationErrors
		decodeData(t, resp, &verrs)
		assert.NotEmpty(t, verrs.Errors, path)
	}
}

func TestReportHandler_SummaryAndBudget(t *testing.T) {
	db := setupSQLiteDB(t)
	r := newTestRouter(db, 1, config.EmailConfig{})
	w, resp := doRequest(t, r, "POST", "/api/categories", `{"name":"Groceries","type":"expense","budgetLimit":300}`)
	require.Equal(t, 201, w.Code)
	var groceries struct {
		ID string `json:"id"`
	}
	decodeData(t, resp, &groceries)
	createCategory(t, r, "Misc", "expense")

	createTransaction(t, r, `{"type":"expense","amount":120,"category":"`+groceries.ID+`"}`)
	createTransaction(t, r, `{"type":"expense","amount":30,"category":"`+groceries.ID+`"}`)

	w, resp = doRequest(t, r, "GET", "/api/reports/summary?period=month", "")
	require.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"totalIncome":0,"totalExpenses":150,"balance":-150}`, string(resp.Data))

	w, resp = doRequest(t, r, "GET", "/api/reports/budget?period=month", "")
	require.Equal(t, 200, w.Code)
	var statuses []struct {
		Name       string  `json:"name"`
		Budget     float64 `json:"budget"`
		Actual     float64 `json:"actual"`
		Percentage float64 `json:"percentage"`
		OverBudget bool    `json:"overBudget"`
	}
	decodeData(t, resp, &statuses)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Groceries", statuses[0].Name)
	assert.Equal(t, float64(300), statuses[0].Budget)
	assert.Equal(t, float64(150), statuses[0].Actual)
	assert.Equal(t, float64(50), statuses[0].Percentage)
	assert.False(t, statuses[0].OverBudget)
}

func TestReportHandler_ExportCSV(t *testing.T) {
	db := setupSQLiteDB(t)
	r := newTestRouter(db, 1, config.EmailConfig{})
	groceries := createCategory(t, r, "Groceries", "expense")
	createTransaction(t, r, `{"type":"expense","amount":12.5,"category":"`+groceries+`","description":"milk, eggs"}`)

	w, _ := doRequest(t, r, "GET", "/api/reports/export", "")
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Date,Type,Category,Amount,Description", lines[0])
	assert.Contains(t, lines[1], `expense,Groceries,12.50,"milk, eggs"`)
}

func TestReportHandler_ExportXLSX(t *testing.T) {
	db := setupSQLiteDB(t)
	r := newTestRouter(db, 1, config.EmailConfig{})
	groceries := createCategory(t, r, "Groceries", "expense")
	salary := createCategory(t, r, "Salary", "income")
	createTransaction(t, r, `{"type":"expense","amount":40,"category":"`+groceries+`"}`)
	createTransaction(t, r, `{"type":"income","amount":100,"category":"`+salary+`"}`)

	w, _ := doRequest(t, r, "GET", "/api/reports/export?format=xlsx", "")
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, exportHeaders, rows[0])

	balance, err := f.GetCellValue("Transactions", "E6")
	require.NoError(t, err)
	assert.Equal(t, "60.00", balance)
}

func TestReportHandler_EmailDisabled(t *testing.T) {
	db := setupSQLiteDB(t)
	r := newTestRouter(db, 1, config.EmailConfig{Enabled: false})

	w, resp := doRequest(t, r, "POST", "/api/reports/email?period=month", "")
	assert.Equal(t, 503, w.Code)
	assert.Equal(t, "Email delivery is not configured", resp.Message)
}

func TestReportHandler_EmailWithoutAddress(t *testing.T) {
	db := setupSQLiteDB(t)
	user, err := service.NewUserService(db).Register(context.Background(), service.RegisterInput{
		Username: "noemail",
		Password: "secret123",
	})
	require.NoError(t, err)
	r := newTestRouter(db, user.ID, config.EmailConfig{Enabled: true, Host: "localhost", Port: 25})

	w, resp := doRequest(t, r, "POST", "/api/reports/email", "")
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "No email address on this account", resp.Message)
}

func TestReportHandler_StoreFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT count").WillReturnError(errors.New("connection refused"))
	r := newTestRouter(db, 1, config.EmailConfig{})

	w, resp := doRequest(t, r, "GET", "/api/reports/transactions", "")
	assert.Equal(t, 500, w.Code)
	assert.Equal(t, 500, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_StoreFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT .* FROM `transactions`").WillReturnError(errors.New("connection refused"))
	r := newTestRouter(db, 1, config.EmailConfig{})

	w, _ := doRequest(t, r, "GET", "/api/transactions", "")
	assert.Equal(t, 500, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

