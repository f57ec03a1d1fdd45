package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"partsstore/internal/domain"
	applog "partsstore/internal/log"
	"partsstore/internal/services"
)

const genericError = "Something went wrong. Please try again."

// fail maps an error to a JSON response. Anything that is not a known
// business error is logged under action and reported without details.
func fail(c *fiber.Ctx, action string, err error) error {
	var iae *domain.InvalidArgumentError
	switch {
	case errors.As(err, &iae):
		applog.Info(c, "validation.fail", map[string]any{"action": action, "field": iae.Field, "reason": iae.Reason})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + iae.Field + ": " + iae.Reason})
	case errors.Is(err, services.ErrNotAvailable):
		applog.Security(c, "access.denied."+action, nil)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "sign in to use this feature"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, services.ErrBadCreds):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrCartEmpty), errors.Is(err, services.ErrQuoteEmpty):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrOutOfStock):
		applog.Info(c, action+".stock", map[string]any{"error": err.Error()})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericError})
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
