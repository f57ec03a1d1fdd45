package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"partsstore/internal/catalog"
	"partsstore/internal/domain"
	"partsstore/internal/pricing"
	"partsstore/internal/services"
)

const maxPerPage = 100

type SearchHandler struct {
	Catalog *services.CatalogService
}

// productView is a product with the price the current principal pays.
type productView struct {
	domain.Product
	Quote pricing.Quote `json:"quote"`
}

type listingView struct {
	services.Listing
	Products []productView `json:"products"`
}

func listingParams(c *fiber.Ctx) (catalog.FilterState, int, int, error) {
	v, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return catalog.FilterState{}, 0, 0, domain.NewInvalidArgument("query", "malformed query string", nil)
	}
	f, err := catalog.ParseQuery(v)
	if err != nil {
		return catalog.FilterState{}, 0, 0, err
	}
	perPage := c.QueryInt("perPage", catalog.DefaultPerPage)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return f, c.QueryInt("page", 1), perPage, nil
}

func browse(c *fiber.Ctx, svc *services.CatalogService, f catalog.FilterState, page, perPage int) error {
	listing, err := svc.Browse(c.UserContext(), f, page, perPage)
	if err != nil {
		return fail(c, "catalog.browse", err)
	}
	role := principal(c).Role
	out := listingView{Listing: listing, Products: make([]productView, 0, len(listing.Products))}
	for _, p := range listing.Products {
		q, err := pricing.QuoteFor(p, role)
		if err != nil {
			return fail(c, "catalog.browse.price", err)
		}
		out.Products = append(out.Products, productView{Product: p, Quote: q})
	}
	if listing.Unavailable {
		c.Status(fiber.StatusServiceUnavailable)
	}
	return c.JSON(out)
}

// GET /api/v1/products
func (h *SearchHandler) Products(c *fiber.Ctx) error {
	f, page, perPage, err := listingParams(c)
	if err != nil {
		return fail(c, "catalog.browse", err)
	}
	return browse(c, h.Catalog, f, page, perPage)
}
