package handlers

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"partsstore/internal/cart"
	"partsstore/internal/config"
	applog "partsstore/internal/log"
	"partsstore/internal/metrics"
	"partsstore/internal/repos"
	"partsstore/internal/services"
)

const (
	BodyLimit  = 1 << 20 // 1 MiB
	CSRFCookie = "csrf_"
	CSRFHeader = "X-Csrf-Token"
)

// errorHandler answers whatever a handler returned as an error. fiber errors
// keep their status; anything else is a generic 500.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			applog.Error(c, "server.error", err, nil)
		}
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericError})
}

// NewApp builds the fiber app with every middleware and route mounted.
func NewApp(db *sqlx.DB, cfg config.Config) *fiber.App {
	metrics.Register()

	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}
	deps := NewDeps(db, cfg, authSvc)

	app := fiber.New(fiber.Config{
		AppName:      "partsstore",
		BodyLimit:    BodyLimit,
		ErrorHandler: errorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			applog.Error(c, "server.panic", fmt.Errorf("%v", e), map[string]any{"stack": string(debug.Stack())})
		},
	}))
	app.Use(logger.New(logger.Config{Output: zap.NewStdLog(applog.L()).Writer()}))
	app.Use(helmet.New())
	app.Use(metrics.Middleware())
	app.Use(Session(authSvc, cfg.SessionCookieSecure))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:" + CSRFHeader,
		CookieName:     CSRFCookie,
		CookieSameSite: "Lax",
		CookieSecure:   cfg.SessionCookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Security check failed. Please refresh and try again."})
		},
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", metrics.Handler())

	// ---------- API ----------
	api := app.Group("/api/v1", limiter.New(limiter.Config{
		Max:        cfg.APIRateMax,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.api.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	api.Get("/session", deps.AuthHandler.Session)
	api.Get("/categories", deps.CategoryHandler.List)
	api.Get("/categories/:id/products", deps.CategoryHandler.Products)
	api.Get("/products", deps.SearchHandler.Products)
	api.Get("/products/:id", deps.ProductHandler.Detail)

	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.InventoryHandler.Check)

	// Cart and quote list share handlers
	for _, k := range []cart.Kind{cart.CartKind, cart.QuoteKind} {
		base := "/" + k.Name
		api.Get(base, deps.CartHandler.View(k))
		api.Delete(base, deps.CartHandler.Clear(k))
		api.Post(base+"/items", deps.CartHandler.Add(k))
		api.Put(base+"/items/:productId", deps.CartHandler.SetQuantity(k))
		api.Delete(base+"/items/:productId", deps.CartHandler.Remove(k))
	}
	api.Post("/quote/submit", deps.QuoteHandler.Submit)
	api.Post("/checkout", deps.OrderHandler.Checkout)
	api.Get("/orders", RequireUser(), deps.OrderHandler.History)
	api.Get("/orders/:id", deps.OrderHandler.View)

	// ---------- Auth (login throttled) ----------
	app.Post("/login", limiter.New(limiter.Config{
		Max:        cfg.LoginRateMax,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)

	// ---------- Admin ----------
	admin := app.Group("/admin", RequireAdmin())
	admin.Get("/orders", deps.AdminHandler.Orders)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/quotes", deps.AdminHandler.QuoteRequests)
	admin.Get("/quotes/:id", deps.AdminHandler.QuoteRequest)
	admin.Get("/inventory", deps.AdminHandler.Inventory)
	admin.Post("/products/:id/stock", deps.AdminHandler.SetStock)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
	return app
}
