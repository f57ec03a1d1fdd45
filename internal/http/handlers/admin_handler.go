package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "partsstore/internal/log"
	"partsstore/internal/repos"
	"partsstore/internal/services"
	"partsstore/internal/validate"
)

const adminListLimit = 100

type AdminHandler struct {
	OrderRepo *repos.OrderRepo
	Quotes    *services.QuoteService
	Inv       *services.InventoryService
}

// GET /admin/orders
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	ords, err := h.OrderRepo.ListLatest(c.UserContext(), adminListLimit)
	if err != nil {
		return fail(c, "admin.orders.list.fail", err)
	}
	return c.JSON(fiber.Map{"orders": ords})
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid order id")
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return badRequest(c, "status", "missing status")
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if err := h.OrderRepo.UpdateStatus(c.UserContext(), id, status); err != nil {
		return fail(c, "admin.orders.update.fail", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.JSON(fiber.Map{"id": id, "status": status})
}

// GET /admin/quotes
func (h *AdminHandler) QuoteRequests(c *fiber.Ctx) error {
	qs, err := h.Quotes.List(c.UserContext(), adminListLimit)
	if err != nil {
		return fail(c, "admin.quotes.list.fail", err)
	}
	return c.JSON(fiber.Map{"quotes": qs})
}

// GET /admin/quotes/:id
func (h *AdminHandler) QuoteRequest(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid quote id")
	}
	q, items, err := h.Quotes.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "admin.quotes.view", err)
	}
	return c.JSON(fiber.Map{"quote": q, "items": items})
}

// GET /admin/inventory
func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	rows, err := h.Inv.List(c.UserContext())
	if err != nil {
		return fail(c, "admin.inventory.list.fail", err)
	}
	return c.JSON(fiber.Map{"stock": rows})
}

type stockRequest struct {
	Qty *int `json:"qty" form:"qty"`
}

// POST /admin/products/:id/stock
func (h *AdminHandler) SetStock(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var req stockRequest
	if err := c.BodyParser(&req); err != nil || req.Qty == nil {
		return badRequest(c, "qty", "qty is required")
	}
	if err := h.Inv.SetStock(c.UserContext(), pid, *req.Qty); err != nil {
		return fail(c, "admin.inventory.save.fail", err)
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"product": pid, "qty": *req.Qty})
	return c.JSON(fiber.Map{"productId": pid, "qty": *req.Qty})
}
