package service

import (
	"testing"

	"go-pos-ws/internal/apperr"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type productEnv struct {
	db      *gorm.DB
	product ProductService
	barcode BarcodeService
	stock   StockService
}

func newProductEnv(t *testing.T) *productEnv {
	t.Helper()
	db := newTestDB(t)
	productRepo := repository.NewProductRepo(db)
	stockLogRepo := repository.NewStockLogRepo(db)
	barcodeSvc := NewBarcodeService(repository.NewBarcodeRepo(db), db, testConfig(), nil)
	return &productEnv{
		db:      db,
		product: NewProductService(productRepo, stockLogRepo, barcodeSvc, db, nil),
		barcode: barcodeSvc,
		stock:   NewStockService(productRepo, stockLogRepo, db, nil),
	}
}

func TestCreateProductWithExplicitBarcode(t *testing.T) {
	env := newProductEnv(t)

	product, err := env.product.CreateProduct(&CreateProductRequest{
		Barcode:      "CUSTOM-1",
		Name:         "Cola",
		Price:        1500,
		InitialStock: 10,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM-1", product.Barcode)
	assert.Equal(t, 10, product.StockQuantity)
	assert.True(t, product.IsActive)

	// Initial stock is seeded through the ledger, so reconciliation holds.
	ok, err := env.stock.Reconcile(product.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ledger, err := env.stock.GetLedger(product.ID, 10)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, model.StockReasonCorrection, ledger[0].Reason)
	assert.Equal(t, 10, ledger[0].Change)
}

func TestCreateProductAllocatesFromPool(t *testing.T) {
	env := newProductEnv(t)

	_, err := env.barcode.GenerateBatch(5, testActor)
	require.NoError(t, err)

	product, err := env.product.CreateProduct(&CreateProductRequest{
		Name:  "Bread",
		Price: 800,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "000001", product.Barcode)

	var bc model.Barcode
	require.NoError(t, env.db.First(&bc, "barcode = ?", product.Barcode).Error)
	assert.Equal(t, model.BarcodeAssigned, bc.Status)

	status, err := env.barcode.PoolStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(4), status.Available)
}

func TestCreateProductEmptyPool(t *testing.T) {
	env := newProductEnv(t)

	_, err := env.product.CreateProduct(&CreateProductRequest{
		Name:  "Bread",
		Price: 800,
	}, testActor)
	assert.ErrorIs(t, err, apperr.ErrBarcodePoolExhausted)
}

func TestCreateProductFailureReturnsBarcodeToPool(t *testing.T) {
	env := newProductEnv(t)

	// A product already owns the code the pool will hand out next.
	_, err := env.product.CreateProduct(&CreateProductRequest{
		Barcode: "000001",
		Name:    "Squatter",
		Price:   500,
	}, testActor)
	require.NoError(t, err)

	_, err = env.barcode.GenerateBatch(1, testActor)
	require.NoError(t, err)

	_, err = env.product.CreateProduct(&CreateProductRequest{
		Name:  "Bread",
		Price: 800,
	}, testActor)
	require.ErrorIs(t, err, apperr.ErrValidation)

	// The failed insert must roll the allocation back, not leak the code.
	var bc model.Barcode
	require.NoError(t, env.db.First(&bc, "barcode_id = ?", 1).Error)
	assert.Equal(t, model.BarcodeAvailable, bc.Status)

	status, err := env.barcode.PoolStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.Available)

	var products int64
	require.NoError(t, env.db.Model(&model.Product{}).Count(&products).Error)
	assert.Equal(t, int64(1), products)
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	env := newProductEnv(t)
	createTestProduct(t, env.db, "Cola", 1500, 0)

	_, err := env.product.CreateProduct(&CreateProductRequest{
		Barcode: "TST-Cola",
		Name:    "Fake Cola",
		Price:   1000,
	}, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateProductValidation(t *testing.T) {
	env := newProductEnv(t)

	_, err := env.product.CreateProduct(&CreateProductRequest{
		Barcode: "X-1",
		Price:   1000,
	}, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.product.CreateProduct(&CreateProductRequest{
		Barcode: "X-2",
		Name:    "Negative",
		Price:   -5,
	}, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateProductNeverTouchesStock(t *testing.T) {
	env := newProductEnv(t)
	product := createTestProduct(t, env.db, "Cola", 1500, 7)

	updated, err := env.product.UpdateProduct(product.ID, &UpdateProductRequest{
		Name:  "Cola Zero",
		Price: 1800,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "Cola Zero", updated.Name)
	assert.Equal(t, int64(1800), updated.Price)
	assert.Equal(t, 7, updated.StockQuantity)

	ok, err := env.stock.Reconcile(product.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeactivateProduct(t *testing.T) {
	env := newProductEnv(t)
	product := createTestProduct(t, env.db, "Old", 500, 2)

	deactivated, err := env.product.DeactivateProduct(product.ID, testActor)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = env.product.DeactivateProduct(uuid.New(), testActor)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetProductByBarcode(t *testing.T) {
	env := newProductEnv(t)
	createTestProduct(t, env.db, "Cola", 1500, 3)

	product, err := env.product.GetProductByBarcode("TST-Cola")
	require.NoError(t, err)
	assert.Equal(t, "Cola", product.Name)

	_, err = env.product.GetProductByBarcode("NOPE")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetLowStockProducts(t *testing.T) {
	env := newProductEnv(t)
	createTestProduct(t, env.db, "Low", 500, 1)   // min level 2
	createTestProduct(t, env.db, "Fine", 500, 9) // min level 2

	low, err := env.product.GetLowStockProducts()
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Low", low[0].Name)
}
