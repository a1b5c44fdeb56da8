package service

import (
	"context"
	"testing"
	"time"

	"budget/config"
	"budget/database"
	"budget/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 2024-03-15 是周五
var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db         *gorm.DB
	categories *CategoryService
	ledger     *LedgerService
	reports    *ReportService
	dashboard  *DashboardService
}

func newTestDB(t *testing.T) *gorm.DB {
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

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	clock := func() time.Time { return fixedNow }

	categories := NewCategoryService(db)
	ledger := NewLedgerService(db, categories)
	ledger.now = clock
	reports := NewReportService(db, config.ReportConfig{})
	reports.now = clock

	return &testEnv{
		db:         db,
		categories: categories,
		ledger:     ledger,
		reports:    reports,
		dashboard:  NewDashboardService(reports, ledger),
	}
}

func (e *testEnv) category(t *testing.T, userID uint, name, kind string) *models.Category {
	t.Helper()
	c, err := e.categories.Create(context.Background(), userID, CategoryInput{Name: name, Type: kind})
	require.NoError(t, err)
	return c
}

func (e *testEnv) transaction(t *testing.T, userID uint, kind, amount string, c *models.Category, date time.Time) *models.Transaction {
	t.Helper()
	tx, err := e.ledger.Create(context.Background(), userID, TransactionInput{
		Type:     kind,
		Amount:   decimal.RequireFromString(amount),
		Category: c.ID.String(),
		Date:     &date,
	})
	require.NoError(t, err)
	return tx
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, f := range verr.Fields {
		if f.Field == field {
			return
		}
	}
	t.Fatalf("expected field error on %q, got %v", field, verr.Fields)
}
