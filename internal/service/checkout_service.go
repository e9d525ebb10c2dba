package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-ws/internal/apperr"
	"go-pos-ws/internal/config"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one (product, quantity) pair submitted by the cashier. Prices
// are never accepted from the client; the current catalog price is re-read
// inside the checkout transaction.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// PaymentInfo carries the payment metadata for a checkout.
type PaymentInfo struct {
	Method        model.PaymentMethod `json:"method" validate:"required"`
	AmountPaid    int64               `json:"amount_paid" validate:"gte=0"`
	Discount      int64               `json:"discount_amount" validate:"gte=0"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Note          string              `json:"note"`
}

type CheckoutService interface {
	CreateTransaction(cart []CartItem, payment PaymentInfo, actor Actor) (*model.Transaction, error)
	FinalizePayment(txID uuid.UUID, method model.PaymentMethod, amountPaid int64, actor Actor) (*model.Transaction, error)
	FailTransaction(txID uuid.UUID, reason string, actor Actor) (*model.Transaction, error)
	CancelTransaction(txID uuid.UUID, reason string, actor Actor) (*model.Transaction, error)
	GetTransaction(txID uuid.UUID) (*model.Transaction, error)
	GetTransactions(limit, offset int) ([]model.Transaction, error)
}

type checkoutService struct {
	productRepo  repository.ProductRepository
	stockLogRepo repository.StockLogRepository
	txRepo       repository.TransactionRepository
	db           *gorm.DB
	cfg          *config.Config
	wsHub        *ws.Hub
}

func NewCheckoutService(
	pRepo repository.ProductRepository,
	lRepo repository.StockLogRepository,
	tRepo repository.TransactionRepository,
	db *gorm.DB,
	cfg *config.Config,
	hub *ws.Hub,
) CheckoutService {
	return &checkoutService{
		productRepo:  pRepo,
		stockLogRepo: lRepo,
		txRepo:       tRepo,
		db:           db,
		cfg:          cfg,
		wsHub:        hub,
	}
}

// CreateTransaction turns a validated cart into a durable sale. Stock checks,
// stock decrements, ledger entries, the transaction header and all line items
// share one database transaction: any failure rolls every one of them back.
//
// Cash collected at the till completes immediately; momo/card/bank sales stay
// pending until FinalizePayment confirms them (stock is taken either way).
func (s *checkoutService) CreateTransaction(cart []CartItem, payment PaymentInfo, actor Actor) (*model.Transaction, error) {
	if len(cart) == 0 {
		return nil, apperr.Validation("cart is empty")
	}
	for i := range cart {
		if errs := validator.ValidateStruct(&cart[i]); len(errs) > 0 {
			return nil, apperr.Validation("cart line %d: field '%s' failed on '%s'",
				i+1, errs[0].FailedField, errs[0].Tag)
		}
	}
	if !model.ValidPaymentMethod(payment.Method) {
		return nil, apperr.Validation("unknown payment method %q", payment.Method)
	}
	if payment.Discount < 0 || payment.AmountPaid < 0 {
		return nil, apperr.Validation("discount and amount paid must not be negative")
	}

	number := newTransactionNumber()
	var trx *model.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		items := make([]model.TransactionItem, 0, len(cart))
		var subtotal int64

		for _, line := range cart {
			var product model.Product
			if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("product", line.ProductID)
				}
				return err
			}
			if !product.IsActive {
				return apperr.Validation("product %q is inactive", product.Name)
			}
			if product.StockQuantity < line.Quantity {
				return apperr.InsufficientStock(product.Name, line.Quantity, product.StockQuantity)
			}

			// The guarded decrement is the serialization point: losing a race
			// against a concurrent sale shows up as zero rows changed.
			rows, err := s.productRepo.AdjustStockQuantity(tx, product.ID, -line.Quantity, actor.ID)
			if err != nil {
				return err
			}
			if rows == 0 {
				var fresh model.Product
				if err := tx.First(&fresh, "id = ?", product.ID).Error; err == nil {
					product = fresh
				}
				return apperr.InsufficientStock(product.Name, line.Quantity, product.StockQuantity)
			}

			entry := &model.StockLog{
				ProductID: product.ID,
				Change:    -line.Quantity,
				Reason:    model.StockReasonSale,
				Notes:     "sale " + number,
			}
			if actor.ID != "" {
				entry.UserID = &actor.ID
			}
			if err := s.stockLogRepo.Create(tx, entry); err != nil {
				return err
			}

			lineTotal := int64(line.Quantity) * product.Price
			items = append(items, model.TransactionItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				ProductImage: product.ImageURL,
				Quantity:     line.Quantity,
				UnitPrice:    product.Price,
				TotalPrice:   lineTotal,
			})
			subtotal += lineTotal
		}

		taxAmount := subtotal * s.cfg.TaxRateBps / 10000
		if payment.Discount > subtotal+taxAmount {
			return apperr.Validation("discount %d exceeds order total %d", payment.Discount, subtotal+taxAmount)
		}
		totalAmount := subtotal + taxAmount - payment.Discount

		trx = &model.Transaction{
			TransactionNumber: number,
			PaymentMethod:     payment.Method,
			Subtotal:          subtotal,
			TaxAmount:         taxAmount,
			DiscountAmount:    payment.Discount,
			TotalAmount:       totalAmount,
			CustomerName:      payment.CustomerName,
			CustomerPhone:     payment.CustomerPhone,
			Note:              payment.Note,
			Items:             items,
		}
		trx.CreatedBy = actor.ID
		trx.UpdatedBy = actor.ID
		if actor.ID != "" {
			trx.CreatedByUserID = &actor.ID
		}

		if payment.Method == model.PaymentCash {
			if payment.AmountPaid < totalAmount {
				return apperr.Validation("amount paid %d is less than total %d", payment.AmountPaid, totalAmount)
			}
			trx.Status = model.TxCompleted
			trx.AmountPaid = payment.AmountPaid
			trx.ChangeAmount = payment.AmountPaid - totalAmount
		} else {
			// Awaiting asynchronous confirmation from the payment provider.
			trx.Status = model.TxPending
			trx.AmountPaid = payment.AmountPaid
		}

		return s.txRepo.Create(tx, trx)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastSale(trx, actor)
	return trx, nil
}

// FinalizePayment records the payment outcome for a pending transaction and
// moves it to completed. Stock was already taken at creation, so this step
// never touches the ledger.
func (s *checkoutService) FinalizePayment(txID uuid.UUID, method model.PaymentMethod, amountPaid int64, actor Actor) (*model.Transaction, error) {
	if !model.ValidPaymentMethod(method) {
		return nil, apperr.Validation("unknown payment method %q", method)
	}

	var trx *model.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		trx, err = s.txRepo.FindByIDIn(tx, txID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("transaction", txID)
			}
			return err
		}
		if trx.Status.IsTerminal() {
			return apperr.InvalidState("transaction %s is already %s", trx.TransactionNumber, trx.Status)
		}

		trx.PaymentMethod = method
		if method == model.PaymentCash {
			if amountPaid < trx.TotalAmount {
				return apperr.Validation("amount paid %d is less than total %d", amountPaid, trx.TotalAmount)
			}
			trx.AmountPaid = amountPaid
			trx.ChangeAmount = amountPaid - trx.TotalAmount
		} else {
			trx.AmountPaid = trx.TotalAmount
			trx.ChangeAmount = 0
		}
		trx.Status = model.TxCompleted
		trx.UpdatedBy = actor.ID

		// Guarded on the status we read: a concurrent cancel or finalize that
		// got there first leaves zero rows and this attempt must not win.
		rows, err := s.txRepo.TransitionStatus(tx, trx.ID, model.TxPending, map[string]interface{}{
			"status":         trx.Status,
			"payment_method": trx.PaymentMethod,
			"amount_paid":    trx.AmountPaid,
			"change_amount":  trx.ChangeAmount,
			"updated_by":     actor.ID,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.InvalidState("transaction %s was transitioned concurrently", trx.TransactionNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return trx, nil
}

// FailTransaction records a declined or timed-out payment. The stock taken at
// creation goes back with return ledger entries, exactly like a cancellation,
// but the terminal status is failed so declined sales stay distinguishable.
func (s *checkoutService) FailTransaction(txID uuid.UUID, reason string, actor Actor) (*model.Transaction, error) {
	return s.abortPending(txID, model.TxFailed, "payment failed", reason, actor)
}

// CancelTransaction aborts a pending sale, returning every unit to stock with
// matching ledger entries before marking the transaction cancelled.
func (s *checkoutService) CancelTransaction(txID uuid.UUID, reason string, actor Actor) (*model.Transaction, error) {
	return s.abortPending(txID, model.TxCancelled, "cancelled", reason, actor)
}

// abortPending moves a pending transaction to a terminal non-completed status,
// restoring each line's stock in the same unit of work.
func (s *checkoutService) abortPending(txID uuid.UUID, status model.TransactionStatus, label, reason string, actor Actor) (*model.Transaction, error) {
	var trx *model.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		trx, err = s.txRepo.FindByIDIn(tx, txID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("transaction", txID)
			}
			return err
		}
		if trx.Status != model.TxPending {
			return apperr.InvalidState("only pending transactions can be %s, %s is %s",
				label, trx.TransactionNumber, trx.Status)
		}

		for _, item := range trx.Items {
			rows, err := s.productRepo.AdjustStockQuantity(tx, item.ProductID, item.Quantity, actor.ID)
			if err != nil {
				return err
			}
			if rows == 0 {
				return apperr.NotFound("product", item.ProductID)
			}

			entry := &model.StockLog{
				ProductID: item.ProductID,
				Change:    item.Quantity,
				Reason:    model.StockReasonReturn,
				Notes:     label + " " + trx.TransactionNumber,
			}
			if actor.ID != "" {
				entry.UserID = &actor.ID
			}
			if err := s.stockLogRepo.Create(tx, entry); err != nil {
				return err
			}
		}

		trx.Status = status
		if reason != "" {
			trx.Note = strings.TrimSpace(trx.Note + "\n" + label + ": " + reason)
		}
		trx.UpdatedBy = actor.ID

		// Guarded on pending: losing to a concurrent finalize rolls the stock
		// restoration above back along with everything else.
		rows, err := s.txRepo.TransitionStatus(tx, trx.ID, model.TxPending, map[string]interface{}{
			"status":     trx.Status,
			"note":       trx.Note,
			"updated_by": actor.ID,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.InvalidState("transaction %s was transitioned concurrently", trx.TransactionNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return trx, nil
}

func (s *checkoutService) GetTransaction(txID uuid.UUID) (*model.Transaction, error) {
	trx, err := s.txRepo.FindByID(txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("transaction", txID)
		}
		return nil, err
	}
	return trx, nil
}

func (s *checkoutService) GetTransactions(limit, offset int) ([]model.Transaction, error) {
	return s.txRepo.FindAll(limit, offset)
}

// newTransactionNumber builds the human-readable receipt number, e.g.
// TRX-20250114-9F3A61B2.
func newTransactionNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("TRX-%s-%s", time.Now().Format("20060102"), suffix)
}

func (s *checkoutService) broadcastSale(trx *model.Transaction, actor Actor) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "sale",
			"action": "transaction_created",
			"transaction": map[string]interface{}{
				"id":           trx.ID,
				"number":       trx.TransactionNumber,
				"status":       trx.Status,
				"total_amount": trx.TotalAmount,
				"item_count":   len(trx.Items),
			},
			"user": map[string]interface{}{
				"id":    actor.ID,
				"name":  actor.Name,
				"email": actor.Email,
			},
			"message": fmt.Sprintf("%s rang up %s (%d items)", actor.Name, trx.TransactionNumber, len(trx.Items)),
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
