package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"partsstore/internal/domain"
	applog "partsstore/internal/log"
	"partsstore/internal/services"
)

const (
	sidCookie       = "sid"
	localSID        = "sid"
	localPrincipal  = "principal"
	sessionLifetime = 30 * 24 * time.Hour
)

// Session makes sure every request carries a sid cookie and resolves the
// principal acting on it.
func Session(auth *services.AuthService, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sidCookie)
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     sidCookie,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Secure:   secure,
				Expires:  time.Now().Add(sessionLifetime),
			})
		}
		c.Locals(localSID, sid)
		c.Locals(localPrincipal, auth.Principal(c.UserContext(), sid))
		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(localSID).(string)
	return sid
}

func principal(c *fiber.Ctx) domain.Principal {
	if p, ok := c.Locals(localPrincipal).(domain.Principal); ok {
		return p
	}
	return domain.Anonymous()
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := principal(c)
		if !p.Authenticated {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "sign in required"})
		}
		if !p.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": p.UserID, "role": p.Role})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is signed in.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !principal(c).Authenticated {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "sign in required"})
		}
		return c.Next()
	}
}
