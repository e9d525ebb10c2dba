package handler

import (
	"strconv"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(s service.StockService) *StockHandler {
	return &StockHandler{service: s}
}

// AdjustStockRequest is a manual ledger adjustment (correction, damage,
// return). Sales go through checkout, restocks through Restock.
type AdjustStockRequest struct {
	Change int               `json:"change_amount"`
	Reason model.StockReason `json:"reason"`
	Notes  string            `json:"notes"`
}

// AdjustStock applies a signed stock change with an audit entry.
// POST /api/v1/products/:id/stock/adjust
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.service.AdjustStock(productID, req.Change, req.Reason, getActor(c), req.Notes)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Stock adjusted", "data": entry})
}

// Restock receives goods.
// POST /api/v1/products/:id/stock/restock
func (h *StockHandler) Restock(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.service.Restock(productID, req.Quantity, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Stock received", "data": entry})
}

// GetLedger returns a product's stock history, newest first.
// GET /api/v1/products/:id/stock/ledger?limit=100
func (h *StockHandler) GetLedger(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	logs, err := h.service.GetLedger(productID, clampLimit(limit, 100, 500))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(logs)
}

// Reconcile checks the ledger sum against the stored quantity.
// GET /api/v1/products/:id/stock/reconcile
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	consistent, err := h.service.Reconcile(productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": productID, "consistent": consistent})
}
