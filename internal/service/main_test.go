package service

import (
	"testing"

	"go-pos-farmstall/internal/model"
	"go-pos-farmstall/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database per test so cases never share
// state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A :memory: database exists per connection; pin the pool to one so
	// every query sees the same data.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&model.Product{}, &model.Purchase{}, &model.Transaction{},
		&model.TransactionLine{}, &model.Setting{}, &model.User{})
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, barcode string, stock int) *model.Product {
	t.Helper()

	product := &model.Product{
		Name:     name,
		Price:    price,
		Barcode:  barcode,
		StockQty: stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func newCatalog(db *gorm.DB) CatalogService {
	return NewCatalogService(
		repository.NewProductRepo(db),
		repository.NewPurchaseRepo(db),
		repository.NewLedgerRepo(db),
		repository.NewSettingRepo(db),
		db,
		nil,
	)
}

func newCheckout(db *gorm.DB) CheckoutService {
	return NewCheckoutService(
		repository.NewProductRepo(db),
		repository.NewLedgerRepo(db),
		db,
		nil,
	)
}
