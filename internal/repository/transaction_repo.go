package repository

import (
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(tx *gorm.DB, trx *model.Transaction) error
	FindByID(id uuid.UUID) (*model.Transaction, error)
	FindByIDIn(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error)
	TransitionStatus(tx *gorm.DB, id uuid.UUID, expected model.TransactionStatus, updates map[string]interface{}) (int64, error)
	FindByNumber(number string) (*model.Transaction, error)
	FindAll(limit, offset int) ([]model.Transaction, error)
	GetSalesSummary(startDate, endDate time.Time) (*SalesSummary, error)
	GetSalesSeries(startDate, endDate time.Time) ([]SalesPoint, error)
}

// SalesSummary aggregates completed sales for a period.
type SalesSummary struct {
	TransactionCount int64 `json:"transaction_count"`
	Revenue          int64 `json:"revenue"`
	ItemsSold        int64 `json:"items_sold"`
}

// SalesPoint is one day in the sales chart.
type SalesPoint struct {
	Date    string `json:"date"`
	Count   int64  `json:"count"`
	Revenue int64  `json:"revenue"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

// Create persists the header and, via the Items association, every line item
// in one go. Must run inside the caller's tx.
func (r *transactionRepo) Create(tx *gorm.DB, trx *model.Transaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(trx).Error
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var trx model.Transaction
	err := r.db.Preload("Items").Preload("CreatedByUser").First(&trx, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// FindByIDIn loads the transaction with its items inside the caller's tx. The
// read takes no lock; status transitions are protected by TransitionStatus.
func (r *transactionRepo) FindByIDIn(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error) {
	if tx == nil {
		tx = r.db
	}
	var trx model.Transaction
	err := tx.Preload("Items").First(&trx, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

// TransitionStatus applies header updates only while the transaction is still
// in the expected status, the same guarded-update pattern as the stock
// decrement. Two racing transitions (finalize vs cancel) can both read
// "pending", but only the first UPDATE matches; the loser sees zero rows and
// must abort. Items are immutable and never touched here.
func (r *transactionRepo) TransitionStatus(tx *gorm.DB, id uuid.UUID, expected model.TransactionStatus, updates map[string]interface{}) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *transactionRepo) FindByNumber(number string) (*model.Transaction, error) {
	var trx model.Transaction
	err := r.db.Preload("Items").First(&trx, "transaction_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

func (r *transactionRepo) FindAll(limit, offset int) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.db.Preload("Items").Preload("CreatedByUser").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) GetSalesSummary(startDate, endDate time.Time) (*SalesSummary, error) {
	var summary SalesSummary

	err := r.db.Model(&model.Transaction{}).
		Where("status = ? AND created_at BETWEEN ? AND ?", model.TxCompleted, startDate, endDate).
		Select("COUNT(*) as transaction_count, COALESCE(SUM(total_amount), 0) as revenue").
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&model.TransactionItem{}).
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Where("transactions.status = ? AND transactions.created_at BETWEEN ? AND ?",
			model.TxCompleted, startDate, endDate).
		Select("COALESCE(SUM(transaction_items.quantity), 0)").
		Scan(&summary.ItemsSold).Error
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

func (r *transactionRepo) GetSalesSeries(startDate, endDate time.Time) ([]SalesPoint, error) {
	var results []SalesPoint

	rows, err := r.db.Model(&model.Transaction{}).
		Select("DATE(created_at) as date, COUNT(*) as count, COALESCE(SUM(total_amount), 0) as revenue").
		Where("status = ? AND created_at BETWEEN ? AND ?", model.TxCompleted, startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p SalesPoint
		if err := rows.Scan(&p.Date, &p.Count, &p.Revenue); err != nil {
			return nil, err
		}
		results = append(results, p)
	}

	return results, rows.Err()
}
