package repository

import (
	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockLogRepository interface {
	Create(tx *gorm.DB, entry *model.StockLog) error
	FindByProduct(productID uuid.UUID, limit int) ([]model.StockLog, error)
	SumChanges(productID uuid.UUID) (int64, error)
}

type stockLogRepo struct {
	db *gorm.DB
}

func NewStockLogRepo(db *gorm.DB) StockLogRepository {
	return &stockLogRepo{db}
}

// Create appends one ledger entry. Always called with the tx that carries the
// matching quantity change so both commit or roll back together.
func (r *stockLogRepo) Create(tx *gorm.DB, entry *model.StockLog) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(entry).Error
}

func (r *stockLogRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.StockLog, error) {
	var logs []model.StockLog
	q := r.db.Preload("User").Where("product_id = ?", productID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}

// SumChanges totals every change_amount ever recorded for the product. Used
// by reconciliation only.
func (r *stockLogRepo) SumChanges(productID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.Model(&model.StockLog{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(change_amount), 0)").
		Scan(&sum).Error
	return sum, err
}
