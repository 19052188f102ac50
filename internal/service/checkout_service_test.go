package service

import (
	"testing"

	"go-pos-farmstall/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_CommitsCartAndDecrementsStock(t *testing.T) {
	db := setupTestDB(t)
	teller := seedUser(t, db, "teller", model.RoleTeller)
	apples := seedProduct(t, db, "Apples", 12.5, "2000100000120", 5)
	svc := newCheckout(db)

	result, err := svc.Checkout([]CartLine{{ProductID: apples.ID, Qty: 3}}, teller.ID, teller.Username)
	require.NoError(t, err)
	assert.Equal(t, 37.5, result.Total)
	require.Len(t, result.Stock, 1)
	assert.Equal(t, 2, result.Stock[0].StockQty)

	var stored model.Product
	require.NoError(t, db.First(&stored, apples.ID).Error)
	assert.Equal(t, 2, stored.StockQty)

	transaction, err := svc.GetTransactionByID(result.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, 37.5, transaction.Total)
	require.Len(t, transaction.Lines, 1)
	assert.Equal(t, "Apples", transaction.Lines[0].Name)
	assert.Equal(t, 12.5, transaction.Lines[0].UnitPrice)
	assert.Equal(t, 37.5, transaction.Lines[0].Subtotal)
}

func TestCheckout_RejectsInsufficientStockWithoutSideEffects(t *testing.T) {
	db := setupTestDB(t)
	teller := seedUser(t, db, "teller", model.RoleTeller)
	milk := seedProduct(t, db, "Milk", 3.0, "2000100000274", 5)
	svc := newCheckout(db)

	_, err := svc.Checkout([]CartLine{{ProductID: milk.ID, Qty: 100}}, teller.ID, teller.Username)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Milk")
	assert.Contains(t, err.Error(), "available 5")

	var stored model.Product
	require.NoError(t, db.First(&stored, milk.ID).Error)
	assert.Equal(t, 5, stored.StockQty)

	var count int64
	require.NoError(t, db.Model(&model.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckout_AllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	teller := seedUser(t, db, "teller", model.RoleTeller)
	apples := seedProduct(t, db, "Apples", 12.5, "2000100000120", 5)
	milk := seedProduct(t, db, "Milk", 3.0, "2000100000274", 1)
	svc := newCheckout(db)

	cart := []CartLine{
		{ProductID: apples.ID, Qty: 2},
		{ProductID: milk.ID, Qty: 10},
	}
	_, err := svc.Checkout(cart, teller.ID, teller.Username)
	require.ErrorIs(t, err, ErrInsufficientStock)

	// No line was applied: neither product moved, no transaction exists.
	var storedApples, storedMilk model.Product
	require.NoError(t, db.First(&storedApples, apples.ID).Error)
	require.NoError(t, db.First(&storedMilk, milk.ID).Error)
	assert.Equal(t, 5, storedApples.StockQty)
	assert.Equal(t, 1, storedMilk.StockQty)

	var count int64
	require.NoError(t, db.Model(&model.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckout_ValidationRejections(t *testing.T) {
	db := setupTestDB(t)
	teller := seedUser(t, db, "teller", model.RoleTeller)
	apples := seedProduct(t, db, "Apples", 12.5, "2000100000120", 5)
	svc := newCheckout(db)

	t.Run("empty cart", func(t *testing.T) {
		_, err := svc.Checkout(nil, teller.ID, teller.Username)
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := svc.Checkout([]CartLine{{ProductID: apples.ID, Qty: 0}}, teller.ID, teller.Username)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.Checkout([]CartLine{{ProductID: 9999, Qty: 1}}, teller.ID, teller.Username)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("unresolvable ref", func(t *testing.T) {
		_, err := svc.Checkout([]CartLine{{ProductRef: "No Such Thing", Qty: 1}}, teller.ID, teller.Username)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestCheckout_ResolvesRefsLikeScanFlow(t *testing.T) {
	db := setupTestDB(t)
	teller := seedUser(t, db, "teller", model.RoleTeller)
	seedProduct(t, db, "Apples", 12.5, "2000100000120", 5)
	svc := newCheckout(db)

	result, err := svc.Checkout([]CartLine{{ProductRef: "2000100000120", Qty: 1}}, teller.ID, teller.Username)
	require.NoError(t, err)
	assert.Equal(t, 12.5, result.Total)

	result, err = svc.Checkout([]CartLine{{ProductRef: "apples", Qty: 1}}, teller.ID, teller.Username)
	require.NoError(t, err)
	assert.Equal(t, 12.5, result.Total)
}

func TestCheckout_LinesKeepSnapshotPrice(t *testing.T) {
	db := setupTestDB(t)
	teller := seedUser(t, db, "teller", model.RoleTeller)
	admin := seedUser(t, db, "admin", model.RoleAdmin)
	apples := seedProduct(t, db, "Apples", 12.5, "2000100000120", 10)

	checkout := newCheckout(db)
	catalog := newCatalog(db)

	result, err := checkout.Checkout([]CartLine{{ProductID: apples.ID, Qty: 2}}, teller.ID, teller.Username)
	require.NoError(t, err)

	// Admin reprices right after the sale; the committed line must not move.
	newPrice := 99.0
	_, err = catalog.UpdateProduct(apples.ID, &UpdateProductRequest{Price: &newPrice}, admin.Username)
	require.NoError(t, err)

	transaction, err := checkout.GetTransactionByID(result.TransactionID)
	require.NoError(t, err)
	require.Len(t, transaction.Lines, 1)
	assert.Equal(t, 12.5, transaction.Lines[0].UnitPrice)
	assert.Equal(t, 25.0, transaction.Total)
}

func TestCheckout_TotalMatchesLineSum(t *testing.T) {
	db := setupTestDB(t)
	teller := seedUser(t, db, "teller", model.RoleTeller)
	apples := seedProduct(t, db, "Apples", 12.5, "2000100000120", 10)
	milk := seedProduct(t, db, "Milk", 3.25, "2000100000274", 10)
	svc := newCheckout(db)

	result, err := svc.Checkout([]CartLine{
		{ProductID: apples.ID, Qty: 2},
		{ProductID: milk.ID, Qty: 3},
	}, teller.ID, teller.Username)
	require.NoError(t, err)

	transaction, err := svc.GetTransactionByID(result.TransactionID)
	require.NoError(t, err)

	sum := 0.0
	for _, line := range transaction.Lines {
		sum += float64(line.Qty) * line.UnitPrice
	}
	assert.Equal(t, sum, transaction.Total)
	assert.Equal(t, 34.75, transaction.Total)
}

func TestCheckout_SequentialCheckoutsSerializeOnStock(t *testing.T) {
	db := setupTestDB(t)
	teller := seedUser(t, db, "teller", model.RoleTeller)
	apples := seedProduct(t, db, "Apples", 12.5, "2000100000120", 5)
	svc := newCheckout(db)

	_, err := svc.Checkout([]CartLine{{ProductID: apples.ID, Qty: 3}}, teller.ID, teller.Username)
	require.NoError(t, err)

	_, err = svc.Checkout([]CartLine{{ProductID: apples.ID, Qty: 3}}, teller.ID, teller.Username)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var stored model.Product
	require.NoError(t, db.First(&stored, apples.ID).Error)
	assert.Equal(t, 2, stored.StockQty)

	// Only the first sale reached the ledger.
	var count int64
	require.NoError(t, db.Model(&model.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
