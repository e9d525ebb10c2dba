package handler

import (
	"strconv"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(s service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

// CheckoutRequest is the cart plus payment metadata from the till.
type CheckoutRequest struct {
	Items   []service.CartItem  `json:"items"`
	Payment service.PaymentInfo `json:"payment"`
}

// Checkout rings up a sale.
// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	trx, err := h.service.CreateTransaction(req.Items, req.Payment, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Transaction created", "data": trx})
}

// FinalizePaymentRequest confirms payment for a pending transaction.
type FinalizePaymentRequest struct {
	Method     model.PaymentMethod `json:"method"`
	AmountPaid int64               `json:"amount_paid"`
}

// FinalizePayment completes a pending transaction.
// POST /api/v1/transactions/:id/finalize
func (h *CheckoutHandler) FinalizePayment(c *fiber.Ctx) error {
	txID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var req FinalizePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	trx, err := h.service.FinalizePayment(txID, req.Method, req.AmountPaid, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Payment finalized", "data": trx})
}

// FailTransaction records a declined payment and restores the sale's stock.
// POST /api/v1/transactions/:id/fail
func (h *CheckoutHandler) FailTransaction(c *fiber.Ctx) error {
	txID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	trx, err := h.service.FailTransaction(txID, req.Reason, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Transaction marked failed", "data": trx})
}

// CancelTransaction aborts a pending sale and restores its stock.
// POST /api/v1/transactions/:id/cancel
func (h *CheckoutHandler) CancelTransaction(c *fiber.Ctx) error {
	txID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	trx, err := h.service.CancelTransaction(txID, req.Reason, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Transaction cancelled", "data": trx})
}

// GetTransactions lists recent transactions.
// GET /api/v1/transactions?limit=50&offset=0
func (h *CheckoutHandler) GetTransactions(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	transactions, err := h.service.GetTransactions(clampLimit(limit, 50, 200), offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

// GetTransaction returns one transaction with its items.
// GET /api/v1/transactions/:id
func (h *CheckoutHandler) GetTransaction(c *fiber.Ctx) error {
	txID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	trx, err := h.service.GetTransaction(txID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(trx)
}
