package service

import (
	"testing"

	"go-pos-ws/internal/apperr"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustStockAppendsLedgerEntry(t *testing.T) {
	db := newTestDB(t)
	svc := NewStockService(repository.NewProductRepo(db), repository.NewStockLogRepo(db), db, nil)
	product := createTestProduct(t, db, "Cola", 1500, 10)

	entry, err := svc.AdjustStock(product.ID, -4, model.StockReasonDamage, testActor, "dropped crate")
	require.NoError(t, err)
	assert.Equal(t, -4, entry.Change)
	assert.Equal(t, model.StockReasonDamage, entry.Reason)

	fresh := reloadProduct(t, db, product)
	assert.Equal(t, 6, fresh.StockQuantity)

	ledger, err := svc.GetLedger(product.ID, 10)
	require.NoError(t, err)
	require.Len(t, ledger, 2) // initial correction + damage
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	db := newTestDB(t)
	svc := NewStockService(repository.NewProductRepo(db), repository.NewStockLogRepo(db), db, nil)
	product := createTestProduct(t, db, "Bread", 800, 5)

	_, err := svc.AdjustStock(product.ID, -5, model.StockReasonSale, testActor, "")
	require.NoError(t, err)

	_, err = svc.AdjustStock(product.ID, -1, model.StockReasonSale, testActor, "")
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	fresh := reloadProduct(t, db, product)
	assert.Equal(t, 0, fresh.StockQuantity)

	// The refused adjustment must not have written a ledger entry.
	ledger, err := svc.GetLedger(product.ID, 10)
	require.NoError(t, err)
	assert.Len(t, ledger, 2)
}

func TestAdjustStockValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewStockService(repository.NewProductRepo(db), repository.NewStockLogRepo(db), db, nil)
	product := createTestProduct(t, db, "Milk", 1200, 3)

	_, err := svc.AdjustStock(product.ID, 0, model.StockReasonCorrection, testActor, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AdjustStock(product.ID, 1, model.StockReason("theft"), testActor, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewStockService(repository.NewProductRepo(db), repository.NewStockLogRepo(db), db, nil)

	_, err := svc.AdjustStock(uuid.New(), 5, model.StockReasonRestock, testActor, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRestock(t *testing.T) {
	db := newTestDB(t)
	svc := NewStockService(repository.NewProductRepo(db), repository.NewStockLogRepo(db), db, nil)
	product := createTestProduct(t, db, "Rice", 5000, 2)

	entry, err := svc.Restock(product.ID, 8, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.StockReasonRestock, entry.Reason)
	assert.Equal(t, 8, entry.Change)

	fresh := reloadProduct(t, db, product)
	assert.Equal(t, 10, fresh.StockQuantity)

	_, err = svc.Restock(product.ID, 0, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Restock(product.ID, -3, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestReconcile(t *testing.T) {
	db := newTestDB(t)
	svc := NewStockService(repository.NewProductRepo(db), repository.NewStockLogRepo(db), db, nil)
	product := createTestProduct(t, db, "Sugar", 900, 7)

	ok, err := svc.Reconcile(product.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.AdjustStock(product.ID, -3, model.StockReasonSale, testActor, "")
	require.NoError(t, err)

	ok, err = svc.Reconcile(product.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// A direct write that bypasses the ledger must be detected.
	require.NoError(t, db.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Update("stock_quantity", 99).Error)

	ok, err = svc.Reconcile(product.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReconcileUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewStockService(repository.NewProductRepo(db), repository.NewStockLogRepo(db), db, nil)

	_, err := svc.Reconcile(uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetLedgerUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewStockService(repository.NewProductRepo(db), repository.NewStockLogRepo(db), db, nil)

	_, err := svc.GetLedger(uuid.New(), 10)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
