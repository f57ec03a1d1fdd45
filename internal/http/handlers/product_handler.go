package handlers

import (
	"github.com/gofiber/fiber/v2"

	"partsstore/internal/pricing"
	"partsstore/internal/services"
	"partsstore/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Inv     *services.InventoryService
}

// GET /api/v1/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return fail(c, "catalog.product", err)
	}
	q, err := pricing.QuoteFor(p, principal(c).Role)
	if err != nil {
		return fail(c, "catalog.product.price", err)
	}
	avail, err := h.Inv.CheckAvailability(c.UserContext(), id)
	if err != nil {
		return fail(c, "catalog.product.availability", err)
	}
	return c.JSON(fiber.Map{"product": productView{Product: p, Quote: q}, "availability": avail})
}
