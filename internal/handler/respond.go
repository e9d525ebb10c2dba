package handler

import (
	"errors"

	"go-pos-ws/internal/apperr"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// getActor pulls the authenticated principal out of the request context
// (set by the auth middleware).
func getActor(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if v := c.Locals("user_id"); v != nil {
		actor.ID = v.(string)
	}
	if v := c.Locals("user_name"); v != nil {
		actor.Name = v.(string)
	}
	if v := c.Locals("user_email"); v != nil {
		actor.Email = v.(string)
	}
	if actor.Name == "" {
		actor.Name = "System"
	}
	return actor
}

// respondError maps the domain error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body so internals never leak.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidState):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrInsufficientStock):
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrBarcodePoolExhausted):
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// clampLimit keeps caller-supplied page sizes inside sane bounds so a zero or
// runaway limit can never dump a whole table.
func clampLimit(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
