package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"partsstore/internal/domain"
	"partsstore/internal/repos"
	"partsstore/internal/services"
)

type fixture struct {
	db     *sqlx.DB
	slots  *repos.SlotRepo
	prods  *repos.ProductRepo
	carts  *services.CartService
	orders *services.OrderService
	quotes *services.QuoteService
	inv    *services.InventoryService
	auth   *services.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{db: db, slots: repos.NewSlotRepo(db), prods: repos.NewProductRepo(db)}
	f.carts = services.NewCartService(f.slots, f.prods)
	f.orders = services.NewOrderService(f.carts, repos.NewOrderRepo(db))
	f.quotes = services.NewQuoteService(f.carts, repos.NewQuoteRepo(db))
	f.inv = services.NewInventoryService(repos.NewInventoryRepo(db))
	f.auth = &services.AuthService{Users: repos.NewUserRepo(db)}
	return f
}

// login signs the seeded account for role into sid.
func (f *fixture) login(t *testing.T, sid string, role domain.Role) domain.Principal {
	t.Helper()
	emails := map[domain.Role]string{
		domain.RoleRetail:    "rita@partsstore.test",
		domain.RoleWholesale: "walt@partsstore.test",
		domain.RoleDealer:    "dana@partsstore.test",
		domain.RoleAdmin:     "admin@partsstore.test",
	}
	_, err := f.auth.Login(context.Background(), sid, emails[role], repos.SeedPassword)
	require.NoError(t, err)
	p := f.auth.Principal(context.Background(), sid)
	require.True(t, p.Authenticated)
	require.Equal(t, role, p.Role)
	return p
}

type brokenSource struct{}

func (brokenSource) ListActive(context.Context) ([]domain.Product, error) {
	return nil, errors.New("database is locked")
}

func (brokenSource) Get(context.Context, string) (domain.Product, error) {
	return domain.Product{}, errors.New("database is locked")
}
