package repository

import (
	"go-pos-ws/internal/model"

	"gorm.io/gorm"
)

type BarcodeRepository interface {
	MaxID(tx *gorm.DB) (uint64, error)
	BulkInsert(tx *gorm.DB, barcodes []model.Barcode) error
	FirstAvailable(tx *gorm.DB) (*model.Barcode, error)
	MarkAssigned(tx *gorm.DB, barcodeID uint64) (int64, error)
	CountAvailable() (int64, error)
	FindAll(limit, offset int) ([]model.Barcode, error)
}

type barcodeRepo struct {
	db *gorm.DB
}

func NewBarcodeRepo(db *gorm.DB) BarcodeRepository {
	return &barcodeRepo{db}
}

// MaxID returns the highest barcode_id ever generated, 0 for an empty pool.
func (r *barcodeRepo) MaxID(tx *gorm.DB) (uint64, error) {
	if tx == nil {
		tx = r.db
	}
	var max uint64
	err := tx.Model(&model.Barcode{}).
		Select("COALESCE(MAX(barcode_id), 0)").
		Scan(&max).Error
	return max, err
}

// BulkInsert writes a whole batch in one statement so a partial batch is
// never visible. A primary-key collision here means another batch raced us
// and the caller should retry with a fresh MaxID.
func (r *barcodeRepo) BulkInsert(tx *gorm.DB, barcodes []model.Barcode) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(&barcodes).Error
}

// FirstAvailable returns the available barcode with the smallest id, giving
// deterministic FIFO allocation order.
func (r *barcodeRepo) FirstAvailable(tx *gorm.DB) (*model.Barcode, error) {
	if tx == nil {
		tx = r.db
	}
	var bc model.Barcode
	err := tx.Where("status = ?", model.BarcodeAvailable).
		Order("barcode_id ASC").
		First(&bc).Error
	if err != nil {
		return nil, err
	}
	return &bc, nil
}

// MarkAssigned flips a barcode available -> assigned, guarded on the current
// status so two allocators can never claim the same row. Returns rows
// affected: 0 means we lost the race.
func (r *barcodeRepo) MarkAssigned(tx *gorm.DB, barcodeID uint64) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&model.Barcode{}).
		Where("barcode_id = ? AND status = ?", barcodeID, model.BarcodeAvailable).
		Updates(map[string]interface{}{
			"status":      model.BarcodeAssigned,
			"assigned_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	return res.RowsAffected, res.Error
}

func (r *barcodeRepo) CountAvailable() (int64, error) {
	var count int64
	err := r.db.Model(&model.Barcode{}).
		Where("status = ?", model.BarcodeAvailable).
		Count(&count).Error
	return count, err
}

func (r *barcodeRepo) FindAll(limit, offset int) ([]model.Barcode, error) {
	var barcodes []model.Barcode
	q := r.db.Order("barcode_id ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&barcodes).Error
	return barcodes, err
}
