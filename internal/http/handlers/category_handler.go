package handlers

import (
	"github.com/gofiber/fiber/v2"

	"partsstore/internal/domain"
	"partsstore/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return fail(c, "catalog.categories", err)
	}
	return c.JSON(fiber.Map{"categories": cats})
}

// GET /api/v1/categories/:id/products is the listing narrowed to one
// category; every other listing parameter still applies.
func (h *CategoryHandler) Products(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return fail(c, "catalog.categories", err)
	}
	var cat *domain.Category
	for i := range cats {
		if cats[i].ID == c.Params("id") {
			cat = &cats[i]
			break
		}
	}
	if cat == nil {
		return fail(c, "catalog.category", domain.ErrNotFound)
	}

	filters, page, perPage, err := listingParams(c)
	if err != nil {
		return fail(c, "catalog.browse", err)
	}
	filters.Categories = []string{cat.Name}
	return browse(c, h.Catalog, filters, page, perPage)
}

