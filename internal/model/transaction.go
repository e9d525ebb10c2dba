package model

import "github.com/google/uuid"

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
	TxCancelled TransactionStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == TxCompleted || s == TxFailed || s == TxCancelled
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentMomo PaymentMethod = "momo"
	PaymentCard PaymentMethod = "card"
	PaymentBank PaymentMethod = "bank"
)

// ValidPaymentMethod reports whether m is a supported payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentMomo, PaymentCard, PaymentBank:
		return true
	}
	return false
}

// Transaction is a completed or in-flight sale. All amounts are minor
// currency units. Once the status is terminal the financial fields are never
// mutated again; corrections happen through new stock ledger entries.
type Transaction struct {
	BaseModel
	TransactionNumber string            `gorm:"type:varchar(40);uniqueIndex;not null" json:"transaction_number"`
	Status            TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod     PaymentMethod     `gorm:"type:varchar(20);not null" json:"payment_method"`

	Subtotal       int64 `gorm:"not null" json:"subtotal"`
	TaxAmount      int64 `gorm:"not null;default:0" json:"tax_amount"`
	DiscountAmount int64 `gorm:"not null;default:0" json:"discount_amount"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"` // subtotal + tax - discount
	AmountPaid     int64 `gorm:"not null;default:0" json:"amount_paid"`
	ChangeAmount   int64 `gorm:"not null;default:0" json:"change_amount"`

	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	CustomerPhone string `gorm:"type:varchar(30)" json:"customer_phone,omitempty"`
	Note          string `gorm:"type:text" json:"note,omitempty"`

	// Items are owned by the transaction and share its lifecycle.
	Items []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
}

// TransactionItem is one cart line frozen at sale time. Product name, image
// and unit price are denormalized snapshots so later product edits never
// rewrite sales history.
type TransactionItem struct {
	BaseModel
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName   string    `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductImage  string    `gorm:"type:varchar(500)" json:"product_image,omitempty"`
	Quantity      int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice     int64     `gorm:"not null" json:"unit_price"`
	Discount      int64     `gorm:"column:discount_amount;not null;default:0" json:"discount_amount"`
	TotalPrice    int64     `gorm:"not null" json:"total_price"` // quantity * unit_price - discount
}

func (TransactionItem) TableName() string {
	return "transaction_items"
}
