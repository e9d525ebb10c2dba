package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionStatusIsTerminal(t *testing.T) {
	assert.False(t, TxPending.IsTerminal())
	assert.True(t, TxCompleted.IsTerminal())
	assert.True(t, TxFailed.IsTerminal())
	assert.True(t, TxCancelled.IsTerminal())
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentCash, PaymentMomo, PaymentCard, PaymentBank} {
		assert.True(t, ValidPaymentMethod(m), string(m))
	}
	assert.False(t, ValidPaymentMethod("barter"))
	assert.False(t, ValidPaymentMethod(""))
}

func TestValidStockReason(t *testing.T) {
	for _, r := range []StockReason{StockReasonSale, StockReasonRestock, StockReasonCorrection, StockReasonReturn, StockReasonDamage} {
		assert.True(t, ValidStockReason(r), string(r))
	}
	assert.False(t, ValidStockReason("theft"))
}
