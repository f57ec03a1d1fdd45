package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "partsstore/internal/log"
	"partsstore/internal/services"
)

type QuoteHandler struct {
	Quotes *services.QuoteService
}

// POST /api/v1/quote/submit
func (h *QuoteHandler) Submit(c *fiber.Ctx) error {
	var req services.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	q, err := h.Quotes.Submit(c.UserContext(), sessionID(c), principal(c), req)
	if err != nil {
		if q.ID == "" {
			return fail(c, "quote.submit", err)
		}
		applog.Error(c, "quote.submit.clear", err, map[string]any{"quote_id": q.ID})
	}
	applog.Audit(c, "quote.submit", map[string]any{"quote_id": q.ID, "subtotal": q.Subtotal.StringFixed(2)})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"quoteId": q.ID, "subtotal": q.Subtotal})
}
