package handlers

import (
	"github.com/jmoiron/sqlx"

	"partsstore/internal/cart"
	"partsstore/internal/config"
	"partsstore/internal/repos"
	"partsstore/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	SearchHandler    *SearchHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	QuoteHandler     *QuoteHandler
	AdminHandler     *AdminHandler
}

// SlotsFor picks the cart/quote persistence backend named in cfg.
func SlotsFor(db *sqlx.DB, cfg config.Config) cart.Slots {
	switch cfg.SlotBackend {
	case config.SlotFile:
		return cart.NewFileSlots(cfg.SlotDir)
	case config.SlotMemory:
		return cart.NewMemorySlots()
	}
	return repos.NewSlotRepo(db)
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	quoteRepo := repos.NewQuoteRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	invSvc := services.NewInventoryService(invRepo)
	cartSvc := services.NewCartService(SlotsFor(db, cfg), prodRepo)
	orderSvc := services.NewOrderService(cartSvc, orderRepo)
	quoteSvc := services.NewQuoteService(cartSvc, quoteRepo)

	return &Deps{
		Auth:             auth,
		AuthHandler:      &AuthHandler{Auth: auth, Carts: cartSvc},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc, Inv: invSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		CartHandler:      &CartHandler{Cart: cartSvc},
		OrderHandler:     &OrderHandler{Order: orderSvc},
		QuoteHandler:     &QuoteHandler{Quotes: quoteSvc},
		AdminHandler:     &AdminHandler{OrderRepo: orderRepo, Quotes: quoteSvc, Inv: invSvc},
	}
}
