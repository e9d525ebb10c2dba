package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go-pos-ws/internal/apperr"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProductRequest is the catalog creation payload. Leave Barcode empty
// to have one allocated from the pool.
type CreateProductRequest struct {
	Barcode       string     `json:"barcode"`
	Name          string     `json:"name" validate:"required"`
	Price         int64      `json:"price" validate:"gte=0"`
	CostPrice     int64      `json:"cost_price" validate:"gte=0"`
	InitialStock  int        `json:"initial_stock" validate:"gte=0"`
	MinStockLevel int        `json:"min_stock_level" validate:"gte=0"`
	Unit          string     `json:"unit"`
	ImageURL      string     `json:"image_url"`
	CategoryID    *uuid.UUID `json:"category_id"`
}

// UpdateProductRequest mutates catalog fields. Stock is deliberately absent:
// quantity changes go through the stock ledger only.
type UpdateProductRequest struct {
	Name          string     `json:"name" validate:"required"`
	Price         int64      `json:"price" validate:"gte=0"`
	CostPrice     int64      `json:"cost_price" validate:"gte=0"`
	MinStockLevel int        `json:"min_stock_level" validate:"gte=0"`
	Unit          string     `json:"unit"`
	ImageURL      string     `json:"image_url"`
	CategoryID    *uuid.UUID `json:"category_id"`
	IsActive      *bool      `json:"is_active"`
}

type ProductService interface {
	CreateProduct(req *CreateProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *UpdateProductRequest, actor Actor) (*model.Product, error)
	DeactivateProduct(id uuid.UUID, actor Actor) (*model.Product, error)
	GetAllProducts() ([]model.Product, error)
	GetProductByID(id uuid.UUID) (*model.Product, error)
	GetProductByBarcode(code string) (*model.Product, error)
	GetLowStockProducts() ([]model.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	stockLogRepo repository.StockLogRepository
	barcodeSvc   BarcodeService
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewProductService(
	pRepo repository.ProductRepository,
	lRepo repository.StockLogRepository,
	barcodeSvc BarcodeService,
	db *gorm.DB,
	hub *ws.Hub,
) ProductService {
	return &productService{
		productRepo:  pRepo,
		stockLogRepo: lRepo,
		barcodeSvc:   barcodeSvc,
		db:           db,
		wsHub:        hub,
	}
}

// CreateProduct adds a catalog item, allocating a barcode from the pool when
// the request doesn't carry one. Any starting quantity is seeded into the
// stock ledger in the same transaction as the insert, so reconciliation
// holds from day one.
func (s *productService) CreateProduct(req *CreateProductRequest, actor Actor) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation("field '%s' failed on '%s'", errs[0].FailedField, errs[0].Tag)
	}

	if req.Barcode != "" {
		existing, err := s.productRepo.FindByBarcode(req.Barcode)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, apperr.Validation("barcode %q already in use by %q", req.Barcode, existing.Name)
		}
	}

	product := &model.Product{
		Barcode:       req.Barcode,
		Name:          req.Name,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		StockQuantity: req.InitialStock,
		MinStockLevel: req.MinStockLevel,
		Unit:          req.Unit,
		ImageURL:      req.ImageURL,
		CategoryID:    req.CategoryID,
		IsActive:      true,
	}
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID
	if actor.ID != "" {
		product.CreatedByUserID = &actor.ID
		product.UpdatedByUserID = &actor.ID
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Allocation shares the insert's transaction: if the insert fails the
		// barcode flips back to available instead of leaking out of the pool.
		if product.Barcode == "" {
			allocated, err := s.barcodeSvc.AllocateNextIn(tx)
			if err != nil {
				return err
			}
			product.Barcode = allocated.Code
		}

		if err := s.productRepo.Create(tx, product); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Validation("barcode %q already in use", product.Barcode)
			}
			return err
		}
		if req.InitialStock > 0 {
			entry := &model.StockLog{
				ProductID: product.ID,
				Change:    req.InitialStock,
				Reason:    model.StockReasonCorrection,
				Notes:     "initial stock",
			}
			if actor.ID != "" {
				entry.UserID = &actor.ID
			}
			return s.stockLogRepo.Create(tx, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastProduct("product_created", product, actor)
	return product, nil
}

func (s *productService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, actor Actor) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation("field '%s' failed on '%s'", errs[0].FailedField, errs[0].Tag)
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", id)
		}
		return nil, err
	}

	product.Name = req.Name
	product.Price = req.Price
	product.CostPrice = req.CostPrice
	product.MinStockLevel = req.MinStockLevel
	product.Unit = req.Unit
	product.ImageURL = req.ImageURL
	product.CategoryID = req.CategoryID
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedBy = actor.ID
	if actor.ID != "" {
		product.UpdatedByUserID = &actor.ID
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	s.broadcastProduct("product_updated", product, actor)
	return product, nil
}

// DeactivateProduct soft-disables a product instead of deleting it, keeping
// historical transactions and ledger entries intact.
func (s *productService) DeactivateProduct(id uuid.UUID, actor Actor) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", id)
		}
		return nil, err
	}

	product.IsActive = false
	product.UpdatedBy = actor.ID
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	s.broadcastProduct("product_deactivated", product, actor)
	return product, nil
}

func (s *productService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *productService) GetProductByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", id)
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductByBarcode(code string) (*model.Product, error) {
	product, err := s.productRepo.FindByBarcode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("barcode", code)
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetLowStockProducts() ([]model.Product, error) {
	return s.productRepo.FindLowStock()
}

func (s *productService) broadcastProduct(action string, product *model.Product, actor Actor) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "stock_update",
			"action": action,
			"product": map[string]interface{}{
				"id":      product.ID,
				"barcode": product.Barcode,
				"name":    product.Name,
				"stock":   product.StockQuantity,
				"price":   product.Price,
				"active":  product.IsActive,
			},
			"user": map[string]interface{}{
				"id":    actor.ID,
				"name":  actor.Name,
				"email": actor.Email,
			},
			"message": fmt.Sprintf("%s: '%s' by %s", action, product.Name, actor.Name),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
