package model

import "github.com/google/uuid"

// Category groups products for catalog browsing.
type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// Product is a sellable catalog item. Prices are stored in minor currency
// units (e.g. cents) to keep totals exact.
//
// StockQuantity must only ever be mutated through the stock ledger's guarded
// update; nothing else writes this column.
type Product struct {
	BaseModel
	Barcode       string `gorm:"type:varchar(50);uniqueIndex;not null" json:"barcode" validate:"required"`
	Name          string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Price         int64  `gorm:"not null;default:0" json:"price" validate:"gte=0"`
	CostPrice     int64  `gorm:"default:0" json:"cost_price" validate:"gte=0"`
	StockQuantity int    `gorm:"not null;default:0" json:"stock_quantity" validate:"gte=0"`
	MinStockLevel int    `gorm:"not null;default:0" json:"min_stock_level" validate:"gte=0"`
	Unit          string `gorm:"type:varchar(20)" json:"unit"`
	ImageURL      string `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`

	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty"`
}

// IsLowStock reports whether the product sits at or below its reorder level.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}
