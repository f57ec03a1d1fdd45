package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"partsstore/internal/cart"
	applog "partsstore/internal/log"
	"partsstore/internal/services"
	"partsstore/internal/validate"
)

// CartHandler serves both the checkout cart and the quote list; each route
// is bound to one cart.Kind.
type CartHandler struct {
	Cart *services.CartService
}

type addItemRequest struct {
	ProductID string `json:"productId" form:"productId"`
}

type setQuantityRequest struct {
	Quantity json.Number `json:"quantity" form:"quantity"`
}

// View answers the store. ?fulfillment= and ?discountCode= preview the
// checkout totals.
func (h *CartHandler) View(k cart.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cv, err := h.Cart.View(c.UserContext(), k, sessionID(c), principal(c))
		if err != nil {
			return fail(c, k.Name+".view", err)
		}
		if ful, code := c.Query("fulfillment"), c.Query("discountCode"); ful != "" || code != "" {
			if cv, err = cv.Reprice(ful, code); err != nil {
				return fail(c, k.Name+".view", err)
			}
		}
		return c.JSON(cv)
	}
}

func (h *CartHandler) Add(k cart.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addItemRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "body", "invalid request body")
		}
		productID, ok := validate.ID(req.ProductID)
		if !ok {
			return badRequest(c, "productId", "missing or invalid productId")
		}
		cv, err := h.Cart.Add(c.UserContext(), k, sessionID(c), principal(c), productID)
		if err != nil {
			return fail(c, k.Name+".add", err)
		}
		applog.Info(c, k.Name+".add", map[string]any{"product_id": productID})
		return c.JSON(cv)
	}
}

func (h *CartHandler) SetQuantity(k cart.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, ok := validate.ID(c.Params("productId"))
		if !ok {
			return badRequest(c, "productId", "invalid productId")
		}
		var req setQuantityRequest
		if err := c.BodyParser(&req); err != nil || req.Quantity == "" {
			return badRequest(c, "quantity", "quantity is required")
		}
		qty, ok := validate.Qty(req.Quantity.String())
		if !ok {
			return badRequest(c, "quantity", "quantity must be a whole number")
		}
		cv, err := h.Cart.SetQuantity(c.UserContext(), k, sessionID(c), principal(c), productID, qty)
		if err != nil {
			return fail(c, k.Name+".set_quantity", err)
		}
		return c.JSON(cv)
	}
}

func (h *CartHandler) Remove(k cart.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, ok := validate.ID(c.Params("productId"))
		if !ok {
			return badRequest(c, "productId", "invalid productId")
		}
		cv, err := h.Cart.Remove(c.UserContext(), k, sessionID(c), principal(c), productID)
		if err != nil {
			return fail(c, k.Name+".remove", err)
		}
		return c.JSON(cv)
	}
}

func (h *CartHandler) Clear(k cart.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cv, err := h.Cart.Clear(c.UserContext(), k, sessionID(c), principal(c))
		if err != nil {
			return fail(c, k.Name+".clear", err)
		}
		return c.JSON(cv)
	}
}
