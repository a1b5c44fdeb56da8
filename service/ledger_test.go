package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"budget/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_CreateThenList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	food := env.category(t, 1, "Food", models.TypeExpense)

	created, err := env.ledger.Create(ctx, 1, TransactionInput{
		Type:        models.TypeExpense,
		Amount:      decimal.RequireFromString("12.50"),
		Category:    food.ID.String(),
		Description: "  lunch ",
	})
	require.NoError(t, err)
	assert.Equal(t, "lunch", created.Description)
	assert.True(t, created.Date.Equal(fixedNow), "date defaults to now")
	require.NotNil(t, created.Category)
	assert.Equal(t, "Food", created.Category.Name)

	list, err := env.ledger.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Food", list[0].CategoryName())
	assert.True(t, decimal.RequireFromString("12.5").Equal(list[0].Amount))

	others, err := env.ledger.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestLedgerService_ListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	food := env.category(t, 1, "Food", models.TypeExpense)

	env.transaction(t, 1, models.TypeExpense, "1", food, fixedNow.AddDate(0, 0, -2))
	env.transaction(t, 1, models.TypeExpense, "2", food, fixedNow)
	env.transaction(t, 1, models.TypeExpense, "3", food, fixedNow.AddDate(0, 0, -1))

	list, err := env.ledger.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2", list[0].Amount.String())
	assert.Equal(t, "3", list[1].Amount.String())
	assert.Equal(t, "1", list[2].Amount.String())
}

func TestLedgerService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	food := env.category(t, 1, "Food", models.TypeExpense)

	_, err := env.ledger.Create(ctx, 1, TransactionInput{Type: "gift", Amount: decimal.Zero})
	requireFieldError(t, err, "type")
	requireFieldError(t, err, "amount")
	requireFieldError(t, err, "category")

	_, err = env.ledger.Create(ctx, 1, TransactionInput{
		Type: models.TypeExpense, Amount: decimal.NewFromInt(5), Category: "groceries",
	})
	requireFieldError(t, err, "category")

	// 别人的类别等同于不存在
	_, err = env.ledger.Create(ctx, 2, TransactionInput{
		Type: models.TypeExpense, Amount: decimal.NewFromInt(5), Category: food.ID.String(),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Category not found", verr.Fields[0].Message)

	list, err := env.ledger.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLedgerService_UpdateZeroAmountRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	food := env.category(t, 1, "Food", models.TypeExpense)
	tx := env.transaction(t, 1, models.TypeExpense, "40", food, fixedNow)

	_, err := env.ledger.Update(ctx, 1, tx.ID.String(), TransactionPatch{Amount: decPtr("0")})
	requireFieldError(t, err, "amount")

	got, err := env.ledger.Get(ctx, 1, tx.ID.String())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(got.Amount))
}

func TestLedgerService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	food := env.category(t, 1, "Food", models.TypeExpense)
	salary := env.category(t, 1, "Salary", models.TypeIncome)
	tx := env.transaction(t, 1, models.TypeExpense, "40", food, fixedNow)

	newDate := fixedNow.AddDate(0, 0, -3)
	updated, err := env.ledger.Update(ctx, 1, tx.ID.String(), TransactionPatch{
		Type:     strPtr(models.TypeIncome),
		Amount:   decPtr("99.99"),
		Category: strPtr(salary.ID.String()),
		Date:     &newDate,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TypeIncome, updated.Type)
	assert.Equal(t, "99.99", updated.Amount.String())
	assert.Equal(t, "Salary", updated.CategoryName())
	assert.True(t, updated.Date.Equal(newDate))

	_, err = env.ledger.Update(ctx, 1, tx.ID.String(), TransactionPatch{Category: strPtr("not-a-uuid")})
	requireFieldError(t, err, "category")

	_, err = env.ledger.Update(ctx, 2, tx.ID.String(), TransactionPatch{Amount: decPtr("1")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	food := env.category(t, 1, "Food", models.TypeExpense)
	tx := env.transaction(t, 1, models.TypeExpense, "40", food, fixedNow)

	assert.ErrorIs(t, env.ledger.Delete(ctx, 2, tx.ID.String()), ErrNotFound)
	require.NoError(t, env.ledger.Delete(ctx, 1, tx.ID.String()))

	_, err := env.ledger.Get(ctx, 1, tx.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.ledger.Delete(ctx, 1, "bad-id"), ErrNotFound)
}

func TestLedgerService_DanglingCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	food := env.category(t, 1, "Food", models.TypeExpense)
	tx := env.transaction(t, 1, models.TypeExpense, "40", food, fixedNow)

	require.NoError(t, env.categories.Delete(ctx, 1, food.ID.String()))

	got, err := env.ledger.Get(ctx, 1, tx.ID.String())
	require.NoError(t, err)
	assert.Nil(t, got.Category)
	assert.Equal(t, models.UncategorizedName, got.CategoryName())

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"category":null`)

	// 悬空记录仍可更新，只要不改类别
	_, err = env.ledger.Update(ctx, 1, tx.ID.String(), TransactionPatch{Description: strPtr("still here")})
	require.NoError(t, err)
}

func TestLedgerService_Recent(t *testing.T) {
	env := newTestEnv(t)
	food := env.category(t, 1, "Food", models.TypeExpense)
	for i := 0; i < 7; i++ {
		env.transaction(t, 1, models.TypeExpense, "1", food, fixedNow.Add(-time.Duration(i)*24*time.Hour))
	}

	recent, err := env.ledger.Recent(context.Background(), 1, RecentLimit)
	require.NoError(t, err)
	require.Len(t, recent, RecentLimit)
	assert.True(t, recent[0].Date.Equal(fixedNow))
}
