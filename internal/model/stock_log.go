package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockReason string

const (
	StockReasonSale       StockReason = "sale"
	StockReasonRestock    StockReason = "restock"
	StockReasonCorrection StockReason = "correction"
	StockReasonReturn     StockReason = "return"
	StockReasonDamage     StockReason = "damage"
)

// ValidStockReason reports whether r is one of the known adjustment reasons.
func ValidStockReason(r StockReason) bool {
	switch r {
	case StockReasonSale, StockReasonRestock, StockReasonCorrection, StockReasonReturn, StockReasonDamage:
		return true
	}
	return false
}

// StockLog is one immutable entry in the stock audit ledger. Rows are only
// ever inserted, in the same database transaction as the quantity change they
// describe. The sum of ChangeAmount per product must always equal the
// product's current StockQuantity.
type StockLog struct {
	ID        uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	ProductID uuid.UUID   `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product    `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Change    int         `gorm:"column:change_amount;not null" json:"change_amount"` // positive = added, negative = removed
	Reason    StockReason `gorm:"type:varchar(20);not null;index" json:"reason"`
	Notes     string      `gorm:"type:text" json:"notes,omitempty"`
	UserID    *string     `gorm:"type:varchar(255)" json:"user_id,omitempty"` // nil means "System"
	User      *User       `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func (StockLog) TableName() string {
	return "stock_logs"
}

func (l *StockLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

// ActorName returns the display name of whoever performed the adjustment.
func (l *StockLog) ActorName() string {
	if l.UserID == nil || *l.UserID == "" {
		return "System"
	}
	if l.User != nil && l.User.FullName != "" {
		return l.User.FullName
	}
	return *l.UserID
}
