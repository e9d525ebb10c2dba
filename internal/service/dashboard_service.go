package service

import (
	"time"

	"go-pos-ws/internal/repository"
)

// DashboardOverview is the role-scoped landing-page payload: sales for the
// day, catalog health and barcode pool status in one round trip.
type DashboardOverview struct {
	Today     *repository.SalesSummary   `json:"today"`
	Inventory *repository.InventoryStats `json:"inventory"`
	Pool      *PoolStatus                `json:"barcode_pool"`
}

type DashboardService interface {
	GetOverview() (*DashboardOverview, error)
	GetSalesSeries(days int) ([]repository.SalesPoint, error)
	GetSalesSummary(days int) (*repository.SalesSummary, error)
}

type dashboardService struct {
	txRepo      repository.TransactionRepository
	productRepo repository.ProductRepository
	barcodeSvc  BarcodeService
}

func NewDashboardService(txRepo repository.TransactionRepository, productRepo repository.ProductRepository, barcodeSvc BarcodeService) DashboardService {
	return &dashboardService{
		txRepo:      txRepo,
		productRepo: productRepo,
		barcodeSvc:  barcodeSvc,
	}
}

func (s *dashboardService) GetOverview() (*DashboardOverview, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := s.txRepo.GetSalesSummary(startOfDay, now)
	if err != nil {
		return nil, err
	}

	inventory, err := s.productRepo.GetInventoryStats()
	if err != nil {
		return nil, err
	}

	pool, err := s.barcodeSvc.PoolStatus()
	if err != nil {
		return nil, err
	}

	return &DashboardOverview{
		Today:     today,
		Inventory: inventory,
		Pool:      pool,
	}, nil
}

func (s *dashboardService) GetSalesSeries(days int) ([]repository.SalesPoint, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.txRepo.GetSalesSeries(startDate, endDate)
}

func (s *dashboardService) GetSalesSummary(days int) (*repository.SalesSummary, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.txRepo.GetSalesSummary(startDate, endDate)
}
