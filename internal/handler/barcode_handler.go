package handler

import (
	"strconv"

	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BarcodeHandler struct {
	service service.BarcodeService
}

func NewBarcodeHandler(s service.BarcodeService) *BarcodeHandler {
	return &BarcodeHandler{service: s}
}

// GenerateBatch extends the pool with a batch of sequential codes.
// POST /api/v1/barcodes/generate
func (h *BarcodeHandler) GenerateBatch(c *fiber.Ctx) error {
	var req struct {
		Count int `json:"count"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	batch, err := h.service.GenerateBatch(req.Count, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Batch generated", "data": batch})
}

// Allocate hands out the next available barcode.
// POST /api/v1/barcodes/allocate
func (h *BarcodeHandler) Allocate(c *fiber.Ctx) error {
	bc, err := h.service.AllocateNext()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Barcode allocated", "data": bc})
}

// PoolStatus reports the remaining pool size and alert level.
// GET /api/v1/barcodes/status
func (h *BarcodeHandler) PoolStatus(c *fiber.Ctx) error {
	status, err := h.service.PoolStatus()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// ListBarcodes pages through the pool for printing.
// GET /api/v1/barcodes?limit=100&offset=0
func (h *BarcodeHandler) ListBarcodes(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	barcodes, err := h.service.ListBarcodes(clampLimit(limit, 100, 500), offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(barcodes)
}
