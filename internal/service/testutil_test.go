package service

import (
	"testing"

	"go-pos-ws/internal/config"
	"go-pos-ws/internal/model"
	"go-pos-ws/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory sqlite database through the same GORM config
// path production uses, so error translation behaves identically. A single
// connection keeps every query on the same in-memory instance and serializes
// concurrent transactions.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Category{}, &model.Product{}, &model.StockLog{},
		&model.Transaction{}, &model.TransactionItem{}, &model.Barcode{},
		&model.User{}, &model.Privilege{}, &model.Role{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		TaxRateBps:        0,
		BarcodeWidth:      6,
		BarcodeBatchMin:   1,
		BarcodeBatchMax:   50,
		PoolWarningLevel:  5,
		PoolCriticalLevel: 2,
	}
}

var testActor = Actor{Name: "Test Cashier"}

// createTestProduct inserts a product the same way the catalog service does:
// any starting quantity is mirrored into the stock ledger so reconciliation
// holds for fixtures too.
func createTestProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) *model.Product {
	t.Helper()

	product := &model.Product{
		Barcode:       "TST-" + name,
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		MinStockLevel: 2,
		IsActive:      true,
	}
	require.NoError(t, db.Create(product).Error)

	if stock > 0 {
		require.NoError(t, db.Create(&model.StockLog{
			ProductID: product.ID,
			Change:    stock,
			Reason:    model.StockReasonCorrection,
			Notes:     "initial stock",
		}).Error)
	}

	return product
}

func countRows(t *testing.T, db *gorm.DB, modelRef interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(modelRef).Count(&n).Error)
	return n
}

func reloadProduct(t *testing.T, db *gorm.DB, p *model.Product) *model.Product {
	t.Helper()
	var fresh model.Product
	require.NoError(t, db.First(&fresh, "id = ?", p.ID).Error)
	return &fresh
}
