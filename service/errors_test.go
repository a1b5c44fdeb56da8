package service

import (
	"context"
	"errors"
	"testing"

	"budget/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("name", "Name is required")
	verr.Add("type", "Invalid category type")
	err := verr.OrNil()
	require.Error(t, err)
	assert.Equal(t, "validation failed: name: Name is required; type: Invalid category type", err.Error())
}

func TestLookupError(t *testing.T) {
	assert.ErrorIs(t, lookupError("category", "get", gorm.ErrRecordNotFound), ErrNotFound)

	err := lookupError("category", "get category", errors.New("connection reset"))
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "get category", perr.Op)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLedgerService_StoreFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnError(errors.New("connection refused"))

	svc := NewLedgerService(db, NewCategoryService(db))
	_, err := svc.List(context.Background(), 1)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardService_StoreFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnError(errors.New("boom"))
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnError(errors.New("boom"))

	categories := NewCategoryService(db)
	dash := NewDashboardService(NewReportService(db, config.ReportConfig{}), NewLedgerService(db, categories))
	_, err := dash.Get(context.Background(), 1)

	var perr *PersistenceError
	assert.ErrorAs(t, err, &perr)
}
