package api

import (
	"testing"

	"budget/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardHandler_Get(t *testing.T) {
	db := setupSQLiteDB(t)
	r := newTestRouter(db, 1, config.EmailConfig{})
	groceries := createCategory(t, r, "Groceries", "expense")
	salary := createCategory(t, r, "Salary", "income")

	createTransaction(t, r, `{"type":"expense","amount":50,"category":"`+groceries+`"}`)
	createTransaction(t, r, `{"type":"expense","amount":30,"category":"`+groceries+`"}`)
	createTransaction(t, r, `{"type":"income","amount":1000,"category":"`+salary+`"}`)

	w, resp := doRequest(t, r, "GET", "/api/dashboard", "")
	require.Equal(t, 200, w.Code, w.Body.String())

	var dash struct {
		Summary struct {
			TotalIncome   float64 `json:"totalIncome"`
			TotalExpenses float64 `json:"totalExpenses"`
			Balance       float64 `json:"balance"`
		} `json:"summary"`
		CategorySpending []struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
		} `json:"categorySpending"`
		RecentTransactions []map[string]interface{} `json:"recentTransactions"`
	}
	decodeData(t, resp, &dash)

	assert.Equal(t, float64(80), dash.Summary.TotalExpenses)
	assert.Equal(t, float64(1000), dash.Summary.TotalIncome)
	assert.Equal(t, float64(920), dash.Summary.Balance)
	require.Len(t, dash.CategorySpending, 1)
	assert.Equal(t, "Groceries", dash.CategorySpending[0].Name)
	assert.Equal(t, float64(80), dash.CategorySpending[0].Amount)
	assert.Len(t, dash.RecentTransactions, 3)
}

func TestDashboardHandler_Empty(t *testing.T) {
	db := setupSQLiteDB(t)
	r := newTestRouter(db, 1, config.EmailConfig{})

	w, resp := doRequest(t, r, "GET", "/api/dashboard", "")
	require.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{
		"summary": {"totalIncome": 0, "totalExpenses": 0, "balance": 0},
		"categorySpending": [],
		"recentTransactions": []
	}`, string(resp.Data))
}

func TestDashboardHandler_Weekly(t *testing.T) {
	db := setupSQLiteDB(t)
	r := newTestRouter(db, 1, config.EmailConfig{})
	groceries := createCategory(t, r, "Groceries", "expense")
	createTransaction(t, r, `{"type":"expense","amount":20,"category":"`+groceries+`"}`)

	w, resp := doRequest(t, r, "GET", "/api/dashboard/weekly", "")
	require.Equal(t, 200, w.Code)
	var series []struct {
		Day    string  `json:"day"`
		Amount float64 `json:"amount"`
	}
	decodeData(t, resp, &series)
	require.Len(t, series, 7)
	assert.Equal(t, "Sun", series[0].Day)
	assert.Equal(t, "Sat", series[6].Day)

	var total float64
	for _, d := range series {
		total += d.Amount
	}
	assert.Equal(t, float64(20), total)
}
