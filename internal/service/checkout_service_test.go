package service

import (
	"sync"
	"testing"

	"go-pos-ws/internal/apperr"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type checkoutEnv struct {
	db       *gorm.DB
	checkout CheckoutService
	stock    StockService
}

func newCheckoutEnv(t *testing.T) *checkoutEnv {
	t.Helper()
	db := newTestDB(t)
	productRepo := repository.NewProductRepo(db)
	stockLogRepo := repository.NewStockLogRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	return &checkoutEnv{
		db:       db,
		checkout: NewCheckoutService(productRepo, stockLogRepo, txRepo, db, testConfig(), nil),
		stock:    NewStockService(productRepo, stockLogRepo, db, nil),
	}
}

func TestCheckoutCashCompletesImmediately(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Cola", 1000, 5)

	trx, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 3}},
		PaymentInfo{Method: model.PaymentCash, AmountPaid: 5000},
		testActor,
	)
	require.NoError(t, err)

	assert.Equal(t, model.TxCompleted, trx.Status)
	assert.Equal(t, int64(3000), trx.Subtotal)
	assert.Equal(t, int64(3000), trx.TotalAmount)
	assert.Equal(t, int64(2000), trx.ChangeAmount)
	require.Len(t, trx.Items, 1)
	assert.Equal(t, int64(1000), trx.Items[0].UnitPrice)
	assert.Equal(t, "Cola", trx.Items[0].ProductName)

	fresh := reloadProduct(t, env.db, product)
	assert.Equal(t, 2, fresh.StockQuantity)

	// One sale ledger entry tagged with the receipt number.
	var logs []model.StockLog
	require.NoError(t, env.db.Where("product_id = ? AND reason = ?", product.ID, model.StockReasonSale).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, -3, logs[0].Change)
	assert.Contains(t, logs[0].Notes, trx.TransactionNumber)

	ok, err := env.stock.Reconcile(product.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckoutNonCashStaysPending(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Bread", 800, 4)

	trx, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 2}},
		PaymentInfo{Method: model.PaymentMomo},
		testActor,
	)
	require.NoError(t, err)
	assert.Equal(t, model.TxPending, trx.Status)

	// Stock is taken up front even for pending sales.
	fresh := reloadProduct(t, env.db, product)
	assert.Equal(t, 2, fresh.StockQuantity)
}

func TestCheckoutAppliesTaxAndDiscount(t *testing.T) {
	env := newCheckoutEnv(t)
	cfg := testConfig()
	cfg.TaxRateBps = 1000 // 10%
	productRepo := repository.NewProductRepo(env.db)
	svc := NewCheckoutService(productRepo, repository.NewStockLogRepo(env.db), repository.NewTransactionRepo(env.db), env.db, cfg, nil)

	product := createTestProduct(t, env.db, "Rice", 1000, 10)

	trx, err := svc.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 2}},
		PaymentInfo{Method: model.PaymentCash, AmountPaid: 2100, Discount: 100},
		testActor,
	)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), trx.Subtotal)
	assert.Equal(t, int64(200), trx.TaxAmount)
	assert.Equal(t, int64(100), trx.DiscountAmount)
	assert.Equal(t, int64(2100), trx.TotalAmount)
	assert.Equal(t, int64(0), trx.ChangeAmount)
}

func TestCheckoutFailureRollsEverythingBack(t *testing.T) {
	env := newCheckoutEnv(t)
	plenty := createTestProduct(t, env.db, "Cola", 1000, 10)
	scarce := createTestProduct(t, env.db, "Bread", 800, 1)

	_, err := env.checkout.CreateTransaction(
		[]CartItem{
			{ProductID: plenty.ID, Quantity: 5},
			{ProductID: scarce.ID, Quantity: 2},
		},
		PaymentInfo{Method: model.PaymentCash, AmountPaid: 10000},
		testActor,
	)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	// The first line's decrement and ledger entry must be rolled back too.
	assert.Equal(t, 10, reloadProduct(t, env.db, plenty).StockQuantity)
	assert.Equal(t, 1, reloadProduct(t, env.db, scarce).StockQuantity)
	assert.Equal(t, int64(0), countRows(t, env.db, &model.Transaction{}))
	assert.Equal(t, int64(0), countRows(t, env.db, &model.TransactionItem{}))

	var saleLogs int64
	require.NoError(t, env.db.Model(&model.StockLog{}).
		Where("reason = ?", model.StockReasonSale).Count(&saleLogs).Error)
	assert.Equal(t, int64(0), saleLogs)
}

func TestCheckoutInsufficientCashRollsBack(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Milk", 1200, 5)

	_, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 2}},
		PaymentInfo{Method: model.PaymentCash, AmountPaid: 2000},
		testActor,
	)
	require.ErrorIs(t, err, apperr.ErrValidation)

	assert.Equal(t, 5, reloadProduct(t, env.db, product).StockQuantity)
	assert.Equal(t, int64(0), countRows(t, env.db, &model.Transaction{}))
}

func TestCheckoutRejectsBadCart(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Cola", 1000, 5)
	payment := PaymentInfo{Method: model.PaymentCash, AmountPaid: 10000}

	_, err := env.checkout.CreateTransaction(nil, payment, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 0}}, payment, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: -1}}, payment, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.checkout.CreateTransaction(
		[]CartItem{{ProductID: uuid.Nil, Quantity: 1}}, payment, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 1}},
		PaymentInfo{Method: "barter", AmountPaid: 10000}, testActor)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCheckoutRejectsInactiveProduct(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Old", 500, 5)
	require.NoError(t, env.db.Model(product).Update("is_active", false).Error)

	_, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 1}},
		PaymentInfo{Method: model.PaymentCash, AmountPaid: 1000},
		testActor,
	)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	env := newCheckoutEnv(t)

	_, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: uuid.New(), Quantity: 1}},
		PaymentInfo{Method: model.PaymentCash, AmountPaid: 1000},
		testActor,
	)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFinalizePayment(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Cola", 1000, 5)

	trx, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 2}},
		PaymentInfo{Method: model.PaymentCard},
		testActor,
	)
	require.NoError(t, err)
	require.Equal(t, model.TxPending, trx.Status)

	done, err := env.checkout.FinalizePayment(trx.ID, model.PaymentCash, 2500, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.TxCompleted, done.Status)
	assert.Equal(t, model.PaymentCash, done.PaymentMethod)
	assert.Equal(t, int64(2500), done.AmountPaid)
	assert.Equal(t, int64(500), done.ChangeAmount)

	// A terminal transaction can't be finalized twice.
	_, err = env.checkout.FinalizePayment(trx.ID, model.PaymentCash, 2500, testActor)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestFinalizePaymentNonCashSettlesExactly(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Bread", 800, 5)

	trx, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 1}},
		PaymentInfo{Method: model.PaymentMomo},
		testActor,
	)
	require.NoError(t, err)

	done, err := env.checkout.FinalizePayment(trx.ID, model.PaymentMomo, 0, testActor)
	require.NoError(t, err)
	assert.Equal(t, model.TxCompleted, done.Status)
	assert.Equal(t, done.TotalAmount, done.AmountPaid)
	assert.Equal(t, int64(0), done.ChangeAmount)
}

func TestFinalizePaymentUnknownTransaction(t *testing.T) {
	env := newCheckoutEnv(t)

	_, err := env.checkout.FinalizePayment(uuid.New(), model.PaymentCash, 1000, testActor)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCancelRestoresStock(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Cola", 1000, 5)

	trx, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 3}},
		PaymentInfo{Method: model.PaymentMomo},
		testActor,
	)
	require.NoError(t, err)
	require.Equal(t, 2, reloadProduct(t, env.db, product).StockQuantity)

	cancelled, err := env.checkout.CancelTransaction(trx.ID, "customer walked away", testActor)
	require.NoError(t, err)
	assert.Equal(t, model.TxCancelled, cancelled.Status)
	assert.Contains(t, cancelled.Note, "customer walked away")

	assert.Equal(t, 5, reloadProduct(t, env.db, product).StockQuantity)

	// A return entry balances out the sale entry.
	var returns []model.StockLog
	require.NoError(t, env.db.Where("product_id = ? AND reason = ?", product.ID, model.StockReasonReturn).Find(&returns).Error)
	require.Len(t, returns, 1)
	assert.Equal(t, 3, returns[0].Change)

	ok, err := env.stock.Reconcile(product.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFailTransactionRestoresStock(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Cola", 1000, 4)

	trx, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 2}},
		PaymentInfo{Method: model.PaymentCard},
		testActor,
	)
	require.NoError(t, err)
	require.Equal(t, 2, reloadProduct(t, env.db, product).StockQuantity)

	failed, err := env.checkout.FailTransaction(trx.ID, "provider declined", testActor)
	require.NoError(t, err)
	assert.Equal(t, model.TxFailed, failed.Status)
	assert.Contains(t, failed.Note, "provider declined")
	assert.Equal(t, 4, reloadProduct(t, env.db, product).StockQuantity)

	// Terminal now, so neither finalize nor cancel may follow.
	_, err = env.checkout.FinalizePayment(trx.ID, model.PaymentCard, 0, testActor)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	_, err = env.checkout.CancelTransaction(trx.ID, "", testActor)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	ok, err := env.stock.Reconcile(product.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCancelOnlyPendingTransactions(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Cola", 1000, 5)

	trx, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 1}},
		PaymentInfo{Method: model.PaymentCash, AmountPaid: 1000},
		testActor,
	)
	require.NoError(t, err)
	require.Equal(t, model.TxCompleted, trx.Status)

	_, err = env.checkout.CancelTransaction(trx.ID, "", testActor)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Equal(t, 4, reloadProduct(t, env.db, product).StockQuantity)
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Last One", 2500, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.checkout.CreateTransaction(
				[]CartItem{{ProductID: product.ID, Quantity: 1}},
				PaymentInfo{Method: model.PaymentCash, AmountPaid: 2500},
				testActor,
			)
		}(i)
	}
	wg.Wait()

	var succeeded, refused int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, apperr.ErrInsufficientStock):
			refused++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, refused)
	assert.Equal(t, 0, reloadProduct(t, env.db, product).StockQuantity)
	assert.Equal(t, int64(1), countRows(t, env.db, &model.Transaction{}))
}

func TestConcurrentFinalizeAndCancel(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Cola", 1000, 3)

	trx, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 2}},
		PaymentInfo{Method: model.PaymentMomo},
		testActor,
	)
	require.NoError(t, err)
	require.Equal(t, model.TxPending, trx.Status)

	var wg sync.WaitGroup
	var finalizeErr, cancelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, finalizeErr = env.checkout.FinalizePayment(trx.ID, model.PaymentMomo, 0, testActor)
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = env.checkout.CancelTransaction(trx.ID, "race", testActor)
	}()
	wg.Wait()

	// Exactly one transition wins; the loser must see invalid state, never a
	// silent double transition.
	if finalizeErr == nil {
		assert.ErrorIs(t, cancelErr, apperr.ErrInvalidState)
	} else {
		assert.ErrorIs(t, finalizeErr, apperr.ErrInvalidState)
		assert.NoError(t, cancelErr)
	}

	final, err := env.checkout.GetTransaction(trx.ID)
	require.NoError(t, err)
	require.True(t, final.Status.IsTerminal())

	switch final.Status {
	case model.TxCompleted:
		// Paid sale keeps its stock taken, no return entries.
		assert.Equal(t, 1, reloadProduct(t, env.db, product).StockQuantity)
		var returns int64
		require.NoError(t, env.db.Model(&model.StockLog{}).
			Where("reason = ?", model.StockReasonReturn).Count(&returns).Error)
		assert.Equal(t, int64(0), returns)
	case model.TxCancelled:
		assert.Equal(t, 3, reloadProduct(t, env.db, product).StockQuantity)
	default:
		t.Fatalf("unexpected terminal status %s", final.Status)
	}

	ok, err := env.stock.Reconcile(product.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetTransactionRoundTrip(t *testing.T) {
	env := newCheckoutEnv(t)
	product := createTestProduct(t, env.db, "Cola", 1000, 5)

	created, err := env.checkout.CreateTransaction(
		[]CartItem{{ProductID: product.ID, Quantity: 2}},
		PaymentInfo{Method: model.PaymentCash, AmountPaid: 2000, CustomerName: "Ama"},
		testActor,
	)
	require.NoError(t, err)

	loaded, err := env.checkout.GetTransaction(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.TransactionNumber, loaded.TransactionNumber)
	assert.Equal(t, "Ama", loaded.CustomerName)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, loaded.Subtotal, loaded.Items[0].TotalPrice)

	_, err = env.checkout.GetTransaction(uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
