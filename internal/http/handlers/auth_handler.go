package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"partsstore/internal/log"
	"partsstore/internal/pricing"
	"partsstore/internal/services"
	"partsstore/internal/validate"
)

type AuthHandler struct {
	Auth  *services.AuthService
	Carts *services.CartService
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Session reports who is signed in on this session and the csrf token to
// send back on unsafe requests.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	p := principal(c)
	badge, _ := pricing.BadgeFor(p.Role)
	tok, _ := c.Locals("csrf").(string)
	return c.JSON(fiber.Map{"principal": p, "badge": badge, "csrfToken": tok})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := sessionID(c)
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	if !validate.Password(req.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	u, err := h.Auth.Login(c.UserContext(), sid, email, req.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return fail(c, "auth.login", err)
	}
	p := u.Principal()
	if err := h.Carts.AdoptQuote(c.UserContext(), sid, p); err != nil {
		log.Error(c, "auth.login.adopt_quote", err, map[string]any{"user_id": u.ID})
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email, "role": p.Role})
	badge, _ := pricing.BadgeFor(p.Role)
	return c.JSON(fiber.Map{"principal": p, "badge": badge})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := sessionID(c)
	if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
		return fail(c, "auth.logout", err)
	}
	// the session id dies with the cookie, so its anonymous stores go too
	if err := h.Carts.Forget(c.UserContext(), sid); err != nil {
		log.Error(c, "auth.logout.forget", err, nil)
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.SendStatus(fiber.StatusNoContent)
}
