package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go-pos-ws/internal/apperr"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifies the staff member performing an operation, as extracted
// from the JWT by the auth middleware.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// System is the actor recorded when no authenticated user is involved.
var System = Actor{Name: "System"}

type StockService interface {
	AdjustStock(productID uuid.UUID, change int, reason model.StockReason, actor Actor, notes string) (*model.StockLog, error)
	Restock(productID uuid.UUID, quantity int, actor Actor) (*model.StockLog, error)
	Reconcile(productID uuid.UUID) (bool, error)
	GetLedger(productID uuid.UUID, limit int) ([]model.StockLog, error)
}

type stockService struct {
	productRepo  repository.ProductRepository
	stockLogRepo repository.StockLogRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewStockService(pRepo repository.ProductRepository, lRepo repository.StockLogRepository, db *gorm.DB, hub *ws.Hub) StockService {
	return &stockService{
		productRepo:  pRepo,
		stockLogRepo: lRepo,
		db:           db,
		wsHub:        hub,
	}
}

// AdjustStock applies a signed quantity change and appends the matching
// ledger entry in one database transaction. A negative change that would take
// the product below zero fails with ErrInsufficientStock and leaves
// everything untouched.
func (s *stockService) AdjustStock(productID uuid.UUID, change int, reason model.StockReason, actor Actor, notes string) (*model.StockLog, error) {
	if change == 0 {
		return nil, apperr.Validation("change amount must not be zero")
	}
	if !model.ValidStockReason(reason) {
		return nil, apperr.Validation("unknown stock reason %q", reason)
	}

	var entry *model.StockLog
	var product model.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := s.productRepo.AdjustStockQuantity(tx, productID, change, actor.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Either the product is gone or the guard refused a negative
			// balance. Re-read to tell the two apart.
			if err := tx.First(&product, "id = ?", productID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("product", productID)
				}
				return err
			}
			return apperr.InsufficientStock(product.Name, -change, product.StockQuantity)
		}

		entry = &model.StockLog{
			ProductID: productID,
			Change:    change,
			Reason:    reason,
			Notes:     notes,
		}
		if actor.ID != "" {
			entry.UserID = &actor.ID
		}
		if err := s.stockLogRepo.Create(tx, entry); err != nil {
			return err
		}

		return tx.First(&product, "id = ?", productID).Error
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStockUpdate(&product, change, reason, actor)
	return entry, nil
}

// Restock is the convenience path for receiving goods.
func (s *stockService) Restock(productID uuid.UUID, quantity int, actor Actor) (*model.StockLog, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("restock quantity must be positive, got %d", quantity)
	}
	return s.AdjustStock(productID, quantity, model.StockReasonRestock, actor, "")
}

// Reconcile recomputes the product's stock from the full ledger history and
// compares it to the stored quantity. Read-only; used for verification.
func (s *stockService) Reconcile(productID uuid.UUID) (bool, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.NotFound("product", productID)
		}
		return false, err
	}

	sum, err := s.stockLogRepo.SumChanges(productID)
	if err != nil {
		return false, err
	}

	return sum == int64(product.StockQuantity), nil
}

func (s *stockService) GetLedger(productID uuid.UUID, limit int) ([]model.StockLog, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", productID)
		}
		return nil, err
	}
	return s.stockLogRepo.FindByProduct(productID, limit)
}

func (s *stockService) broadcastStockUpdate(product *model.Product, change int, reason model.StockReason, actor Actor) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": "stock_adjusted",
			"product": map[string]interface{}{
				"id":        product.ID,
				"barcode":   product.Barcode,
				"name":      product.Name,
				"new_stock": product.StockQuantity,
				"low_stock": product.IsLowStock(),
			},
			"change": change,
			"reason": reason,
			"user": map[string]interface{}{
				"id":    actor.ID,
				"name":  actor.Name,
				"email": actor.Email,
			},
			"message": fmt.Sprintf("%s adjusted '%s' by %+d (%s)", actor.Name, product.Name, change, reason),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
