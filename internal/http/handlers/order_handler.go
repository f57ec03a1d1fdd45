package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "partsstore/internal/log"
	"partsstore/internal/services"
	"partsstore/internal/validate"
)

type OrderHandler struct {
	Order *services.OrderService
}

type checkoutRequest struct {
	Fulfillment string `json:"fulfillment" form:"fulfillment"`
	Name        string `json:"name" form:"name"`
	Email       string `json:"email" form:"email"`
	Code        string `json:"discountCode" form:"discountCode"`
}

// POST /api/v1/checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	sid, p := sessionID(c), principal(c)
	orderID, totals, err := h.Order.Checkout(c.UserContext(), sid, p, services.CheckoutRequest{
		Fulfillment:  req.Fulfillment,
		Name:         req.Name,
		Email:        req.Email,
		DiscountCode: req.Code,
	})
	if err != nil {
		if orderID != "" {
			// placed, but the cart could not be emptied
			applog.Error(c, "order.place.cart_clear", err, map[string]any{"order_id": orderID})
		} else {
			return fail(c, "order.place", err)
		}
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": orderID,
		"user_id":  p.UserID,
		"total":    totals.Total.StringFixed(2),
		"code":     totals.DiscountCode,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"orderId": orderID, "total": totals.Total, "totals": totals})
}

// GET /api/v1/orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.History(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, "order.history", err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// GET /api/v1/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid order id")
	}
	o, items, err := h.Order.Get(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, "order.view", err)
	}
	return c.JSON(fiber.Map{"order": o, "items": items})
}
