package repository

import (
	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByBarcode(code string) (*model.Product, error)
	FindLowStock() ([]model.Product, error)
	Update(product *model.Product) error
	AdjustStockQuantity(tx *gorm.DB, id uuid.UUID, change int, updatedBy string) (int64, error)
	GetInventoryStats() (*InventoryStats, error)
}

// InventoryStats is the catalog-side slice of the dashboard.
type InventoryStats struct {
	TotalProducts  int64 `json:"total_products"`
	LowStockCount  int64 `json:"low_stock_count"`
	TotalValuation int64 `json:"total_valuation"`
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// Create inserts the product. Pass a tx when the insert must commit together
// with other writes (initial stock log, barcode assignment); pass nil to use
// the repo's own connection.
func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(code string) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").First(&product, "barcode = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindLowStock() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("is_active = ? AND stock_quantity <= min_stock_level", true).
		Order("stock_quantity ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) GetInventoryStats() (*InventoryStats, error) {
	var stats InventoryStats

	if err := r.db.Model(&model.Product{}).Where("is_active = ?", true).
		Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).
		Where("is_active = ? AND stock_quantity <= min_stock_level", true).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).Where("is_active = ?", true).
		Select("COALESCE(SUM(stock_quantity * price), 0)").
		Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// AdjustStockQuantity applies a signed stock change with the non-negative
// guard folded into the UPDATE itself, so a concurrent sale can never push
// the quantity below zero. Returns the number of rows changed: 0 means the
// guard (or the id match) failed and the caller must decide between
// not-found and insufficient-stock. This is the only writer of
// stock_quantity in the codebase.
func (r *productRepo) AdjustStockQuantity(tx *gorm.DB, id uuid.UUID, change int, updatedBy string) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, change).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity + ?", change),
			"updated_by":     updatedBy,
		})
	return res.RowsAffected, res.Error
}
