package service

import (
	"testing"
	"time"

	"go-pos-farmstall/internal/model"
	"go-pos-farmstall/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTransaction(t *testing.T, db *gorm.DB, at time.Time, lines []model.TransactionLine) {
	t.Helper()

	total := 0.0
	for _, line := range lines {
		total += line.Subtotal()
	}
	transaction := &model.Transaction{
		DateTime: at,
		Total:    total,
		Lines:    lines,
	}
	require.NoError(t, repository.NewLedgerRepo(db).CreateWithLines(db, transaction))
}

func todayAt(hour int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, 15, 0, 0, now.Location())
}

func TestTodayStats(t *testing.T) {
	db := setupTestDB(t)
	apples := seedProduct(t, db, "Apples", 12.5, "2000100000120", 50)
	milk := seedProduct(t, db, "Milk", 3.0, "2000100000274", 50)
	svc := NewStatsService(repository.NewLedgerRepo(db))

	seedTransaction(t, db, todayAt(9), []model.TransactionLine{
		{ProductID: apples.ID, Qty: 3, UnitPrice: 12.5},
	})
	seedTransaction(t, db, todayAt(9), []model.TransactionLine{
		{ProductID: milk.ID, Qty: 2, UnitPrice: 3.0},
	})
	seedTransaction(t, db, todayAt(14), []model.TransactionLine{
		{ProductID: apples.ID, Qty: 1, UnitPrice: 12.5},
		{ProductID: milk.ID, Qty: 2, UnitPrice: 3.0},
	})
	// Yesterday's sale must not count.
	seedTransaction(t, db, todayAt(9).AddDate(0, 0, -1), []model.TransactionLine{
		{ProductID: apples.ID, Qty: 100, UnitPrice: 12.5},
	})

	stats, err := svc.TodayStats(10)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TransactionsCount)
	assert.EqualValues(t, 8, stats.TotalItemsSold)
	assert.Equal(t, 37.5+6.0+18.5, stats.TotalSalesValue)
	assert.Equal(t, 2.67, stats.AvgBasketSize)

	require.Len(t, stats.TopProducts, 2)
	// Both sold 4 units today; the tie breaks on product id ascending.
	assert.Equal(t, apples.ID, stats.TopProducts[0].ProductID)
	assert.Equal(t, "Apples", stats.TopProducts[0].Name)
	assert.EqualValues(t, 4, stats.TopProducts[0].QtySold)
	assert.Equal(t, milk.ID, stats.TopProducts[1].ProductID)

	require.Len(t, stats.RevenuePerHour, 2)
	assert.Equal(t, 9, stats.RevenuePerHour[0].Hour)
	assert.Equal(t, 43.5, stats.RevenuePerHour[0].Revenue)
	assert.Equal(t, 14, stats.RevenuePerHour[1].Hour)
	assert.Equal(t, 18.5, stats.RevenuePerHour[1].Revenue)
}

func TestTodayStats_TopBound(t *testing.T) {
	db := setupTestDB(t)
	apples := seedProduct(t, db, "Apples", 12.5, "2000100000120", 50)
	milk := seedProduct(t, db, "Milk", 3.0, "2000100000274", 50)
	svc := NewStatsService(repository.NewLedgerRepo(db))

	seedTransaction(t, db, todayAt(11), []model.TransactionLine{
		{ProductID: apples.ID, Qty: 5, UnitPrice: 12.5},
		{ProductID: milk.ID, Qty: 1, UnitPrice: 3.0},
	})

	stats, err := svc.TodayStats(1)
	require.NoError(t, err)
	require.Len(t, stats.TopProducts, 1)
	assert.Equal(t, "Apples", stats.TopProducts[0].Name)
}

func TestTodayStats_EmptyDay(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStatsService(repository.NewLedgerRepo(db))

	stats, err := svc.TodayStats(10)
	require.NoError(t, err)

	assert.Zero(t, stats.TransactionsCount)
	assert.Zero(t, stats.TotalSalesValue)
	assert.Zero(t, stats.TotalItemsSold)
	// Defined as 0, not an error.
	assert.Zero(t, stats.AvgBasketSize)
	assert.Empty(t, stats.TopProducts)
	assert.Empty(t, stats.RevenuePerHour)
}

func TestTodayStats_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	apples := seedProduct(t, db, "Apples", 12.5, "2000100000120", 50)
	svc := NewStatsService(repository.NewLedgerRepo(db))

	seedTransaction(t, db, todayAt(10), []model.TransactionLine{
		{ProductID: apples.ID, Qty: 3, UnitPrice: 12.5},
	})

	first, err := svc.TodayStats(10)
	require.NoError(t, err)
	second, err := svc.TodayStats(10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
