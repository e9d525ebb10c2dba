package service

import (
	"sync"
	"testing"

	"go-pos-ws/internal/apperr"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBarcodeService(t *testing.T) (BarcodeService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewBarcodeService(repository.NewBarcodeRepo(db), db, testConfig(), nil), db
}

func TestGenerateBatchSequentialFromEmptyPool(t *testing.T) {
	svc, _ := newBarcodeService(t)

	batch, err := svc.GenerateBatch(5, testActor)
	require.NoError(t, err)
	require.Len(t, batch, 5)

	for i, bc := range batch {
		assert.Equal(t, uint64(i+1), bc.BarcodeID)
		assert.Equal(t, model.BarcodeAvailable, bc.Status)
		assert.Len(t, bc.Code, 6)
	}
	assert.Equal(t, "000001", batch[0].Code)
	assert.Equal(t, "000005", batch[4].Code)
}

func TestGenerateBatchesAreContiguousAndDisjoint(t *testing.T) {
	svc, _ := newBarcodeService(t)

	first, err := svc.GenerateBatch(3, testActor)
	require.NoError(t, err)
	second, err := svc.GenerateBatch(4, testActor)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), first[2].BarcodeID)
	assert.Equal(t, uint64(4), second[0].BarcodeID)
	assert.Equal(t, uint64(7), second[3].BarcodeID)

	seen := map[string]bool{}
	for _, bc := range append(first, second...) {
		assert.False(t, seen[bc.Code], "duplicate code %s", bc.Code)
		seen[bc.Code] = true
	}
}

func TestGenerateBatchBounds(t *testing.T) {
	svc, _ := newBarcodeService(t)

	_, err := svc.GenerateBatch(0, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.GenerateBatch(51, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAllocateNextIsFIFO(t *testing.T) {
	svc, db := newBarcodeService(t)

	_, err := svc.GenerateBatch(3, testActor)
	require.NoError(t, err)

	for want := uint64(1); want <= 3; want++ {
		bc, err := svc.AllocateNext()
		require.NoError(t, err)
		assert.Equal(t, want, bc.BarcodeID)
		assert.Equal(t, model.BarcodeAssigned, bc.Status)
		assert.NotNil(t, bc.AssignedAt)
	}

	// Status flips must be persisted, not just reflected in the return value.
	var assigned int64
	require.NoError(t, db.Model(&model.Barcode{}).
		Where("status = ?", model.BarcodeAssigned).Count(&assigned).Error)
	assert.Equal(t, int64(3), assigned)

	_, err = svc.AllocateNext()
	assert.ErrorIs(t, err, apperr.ErrBarcodePoolExhausted)
}

func TestAllocateNextEmptyPool(t *testing.T) {
	svc, _ := newBarcodeService(t)

	_, err := svc.AllocateNext()
	assert.ErrorIs(t, err, apperr.ErrBarcodePoolExhausted)
}

func TestAllocateNextConcurrent(t *testing.T) {
	svc, _ := newBarcodeService(t)

	_, err := svc.GenerateBatch(10, testActor)
	require.NoError(t, err)

	var wg sync.WaitGroup
	codes := make([]string, 10)
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bc, err := svc.AllocateNext()
			if err == nil {
				codes[i] = bc.Code
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range codes {
		require.NoError(t, errs[i])
		assert.False(t, seen[codes[i]], "code %s handed out twice", codes[i])
		seen[codes[i]] = true
	}
}

func TestPoolStatusLevels(t *testing.T) {
	svc, _ := newBarcodeService(t)

	// warning at <=5, critical at <=2 (test config)
	_, err := svc.GenerateBatch(8, testActor)
	require.NoError(t, err)

	status, err := svc.PoolStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(8), status.Available)
	assert.Equal(t, model.PoolLevelOK, status.Level)

	for i := 0; i < 3; i++ {
		_, err := svc.AllocateNext()
		require.NoError(t, err)
	}
	status, err = svc.PoolStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(5), status.Available)
	assert.Equal(t, model.PoolLevelWarning, status.Level)

	for i := 0; i < 3; i++ {
		_, err := svc.AllocateNext()
		require.NoError(t, err)
	}
	status, err = svc.PoolStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.Available)
	assert.Equal(t, model.PoolLevelCritical, status.Level)
}
