package service

import (
	"context"
	"testing"

	"budget/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Get(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	groceries := env.category(t, 1, "Groceries", models.TypeExpense)
	salary := env.category(t, 1, "Salary", models.TypeIncome)

	env.transaction(t, 1, models.TypeExpense, "50", groceries, fixedNow)
	env.transaction(t, 1, models.TypeExpense, "30", groceries, fixedNow.AddDate(0, 0, -1))
	env.transaction(t, 1, models.TypeIncome, "500", salary, fixedNow.AddDate(0, 0, -2))
	// 上个月，只出现在最近账目里
	env.transaction(t, 1, models.TypeExpense, "999", groceries, fixedNow.AddDate(0, -1, 0))

	dash, err := env.dashboard.Get(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, "80", dash.Summary.TotalExpenses.String())
	assert.Equal(t, "500", dash.Summary.TotalIncome.String())
	assert.Equal(t, "420", dash.Summary.Balance.String())

	require.Len(t, dash.CategorySpending, 1)
	assert.Equal(t, "Groceries", dash.CategorySpending[0].Name)
	assert.Equal(t, "80", dash.CategorySpending[0].Amount.String())

	require.Len(t, dash.RecentTransactions, 4)
	assert.Equal(t, "Groceries", dash.RecentTransactions[0].CategoryName())
}

func TestDashboardService_Empty(t *testing.T) {
	env := newTestEnv(t)

	dash, err := env.dashboard.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, dash.Summary.Balance.IsZero())
	assert.NotNil(t, dash.CategorySpending)
	assert.NotNil(t, dash.RecentTransactions)
	assert.Empty(t, dash.RecentTransactions)

	weekly, err := env.dashboard.Weekly(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, weekly, 7)
}
