package model

import (
	"fmt"
	"time"
)

type BarcodeStatus string

const (
	BarcodeAvailable BarcodeStatus = "available"
	BarcodeAssigned  BarcodeStatus = "assigned"
)

// Barcode is one entry in the pre-generated barcode pool. BarcodeID is the
// allocation sequence: batches are inserted contiguously after the current
// maximum, and allocation hands out the smallest available id. A barcode
// moves available -> assigned at most once and is never deleted, so the pool
// doubles as an audit trail of every code ever issued.
type Barcode struct {
	BarcodeID  uint64        `gorm:"primaryKey;autoIncrement:false" json:"barcode_id"`
	Code       string        `gorm:"column:barcode;type:varchar(32);uniqueIndex;not null" json:"barcode"`
	Status     BarcodeStatus `gorm:"type:varchar(20);not null;index;default:available" json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	AssignedAt *time.Time    `json:"assigned_at,omitempty"`
}

func (Barcode) TableName() string {
	return "barcodes"
}

// FormatBarcode renders a pool id as the zero-padded fixed-width code printed
// on labels.
func FormatBarcode(id uint64, width int) string {
	return fmt.Sprintf("%0*d", width, id)
}

// PoolLevel classifies how close the barcode pool is to running dry. Purely
// for operational alerting.
type PoolLevel string

const (
	PoolLevelOK       PoolLevel = "ok"
	PoolLevelWarning  PoolLevel = "warning"
	PoolLevelCritical PoolLevel = "critical"
)
