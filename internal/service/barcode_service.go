package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-pos-ws/internal/apperr"
	"go-pos-ws/internal/config"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"gorm.io/gorm"
)

// allocRetries bounds how often a lost pick-and-flip race is retried before
// giving up.
const allocRetries = 3

// PoolStatus reports how many barcodes are still available and how urgently
// the pool needs a new batch.
type PoolStatus struct {
	Available int64           `json:"available"`
	Level     model.PoolLevel `json:"level"`
}

type BarcodeService interface {
	GenerateBatch(count int, actor Actor) ([]model.Barcode, error)
	AllocateNext() (*model.Barcode, error)
	AllocateNextIn(tx *gorm.DB) (*model.Barcode, error)
	PoolStatus() (*PoolStatus, error)
	ListBarcodes(limit, offset int) ([]model.Barcode, error)
}

type barcodeService struct {
	barcodeRepo repository.BarcodeRepository
	db          *gorm.DB
	cfg         *config.Config
	wsHub       *ws.Hub
}

func NewBarcodeService(repo repository.BarcodeRepository, db *gorm.DB, cfg *config.Config, hub *ws.Hub) BarcodeService {
	return &barcodeService{
		barcodeRepo: repo,
		db:          db,
		cfg:         cfg,
		wsHub:       hub,
	}
}

// GenerateBatch extends the pool with count sequential ids after the current
// maximum, all inserted in one bulk write. Two admins generating at the same
// time can collide on ids; the loser retries with a fresh maximum so the
// resulting ranges stay contiguous and disjoint.
func (s *barcodeService) GenerateBatch(count int, actor Actor) ([]model.Barcode, error) {
	if count < s.cfg.BarcodeBatchMin || count > s.cfg.BarcodeBatchMax {
		return nil, apperr.Validation("batch size %d outside allowed range %d-%d",
			count, s.cfg.BarcodeBatchMin, s.cfg.BarcodeBatchMax)
	}

	var batch []model.Barcode
	var lastErr error

	for attempt := 0; attempt < allocRetries; attempt++ {
		lastErr = s.db.Transaction(func(tx *gorm.DB) error {
			maxID, err := s.barcodeRepo.MaxID(tx)
			if err != nil {
				return err
			}

			batch = make([]model.Barcode, count)
			for i := 0; i < count; i++ {
				id := maxID + uint64(i) + 1
				batch[i] = model.Barcode{
					BarcodeID: id,
					Code:      model.FormatBarcode(id, s.cfg.BarcodeWidth),
					Status:    model.BarcodeAvailable,
				}
			}
			return s.barcodeRepo.BulkInsert(tx, batch)
		})
		if lastErr == nil {
			s.broadcastPoolLevel()
			return batch, nil
		}
		if !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			return nil, lastErr
		}
		// Concurrent batch claimed our range; re-read the maximum.
	}

	return nil, fmt.Errorf("barcode batch contention: %w", apperr.ErrConflict)
}

// AllocateNext hands out the smallest available barcode. The status flip is
// guarded on the current status, so two concurrent allocators can never
// receive the same code; the loser retries against a fresh candidate.
func (s *barcodeService) AllocateNext() (*model.Barcode, error) {
	bc, err := s.allocateNext(nil)
	if err == nil {
		s.broadcastPoolLevel()
	}
	return bc, err
}

// AllocateNextIn allocates inside the caller's transaction, so the assignment
// rolls back with whatever write the barcode was allocated for. No pool-level
// broadcast here: the caller's tx may still abort.
func (s *barcodeService) AllocateNextIn(tx *gorm.DB) (*model.Barcode, error) {
	return s.allocateNext(tx)
}

func (s *barcodeService) allocateNext(tx *gorm.DB) (*model.Barcode, error) {
	for attempt := 0; attempt < allocRetries; attempt++ {
		candidate, err := s.barcodeRepo.FirstAvailable(tx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.ErrBarcodePoolExhausted
			}
			return nil, err
		}

		rows, err := s.barcodeRepo.MarkAssigned(tx, candidate.BarcodeID)
		if err != nil {
			return nil, err
		}
		if rows == 1 {
			now := time.Now()
			candidate.Status = model.BarcodeAssigned
			candidate.AssignedAt = &now
			return candidate, nil
		}
		// Lost the race for this row; pick again.
	}

	return nil, fmt.Errorf("allocation contention: %w", apperr.ErrBarcodePoolExhausted)
}

// PoolStatus classifies the remaining pool size for operational alerting.
func (s *barcodeService) PoolStatus() (*PoolStatus, error) {
	available, err := s.barcodeRepo.CountAvailable()
	if err != nil {
		return nil, err
	}
	return &PoolStatus{Available: available, Level: s.classify(available)}, nil
}

func (s *barcodeService) ListBarcodes(limit, offset int) ([]model.Barcode, error) {
	return s.barcodeRepo.FindAll(limit, offset)
}

func (s *barcodeService) classify(available int64) model.PoolLevel {
	switch {
	case available <= int64(s.cfg.PoolCriticalLevel):
		return model.PoolLevelCritical
	case available <= int64(s.cfg.PoolWarningLevel):
		return model.PoolLevelWarning
	default:
		return model.PoolLevelOK
	}
}

// broadcastPoolLevel warns operators over the websocket hub when the pool
// runs low. Reporting only; allocation correctness never depends on it.
func (s *barcodeService) broadcastPoolLevel() {
	if s.wsHub == nil {
		return
	}
	go func() {
		status, err := s.PoolStatus()
		if err != nil || status.Level == model.PoolLevelOK {
			return
		}
		payload := map[string]interface{}{
			"type":      "barcode_pool",
			"available": status.Available,
			"level":     status.Level,
			"message":   fmt.Sprintf("barcode pool %s: %d codes left", status.Level, status.Available),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
