package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsstore/internal/cart"
	"partsstore/internal/domain"
	"partsstore/internal/services"
)

func TestOwner(t *testing.T) {
	assert.Equal(t, "s:abc", services.Owner("abc", domain.Anonymous()))
	assert.Equal(t, "u:u-1", services.Owner("abc", domain.Principal{UserID: "u-1", Authenticated: true}))
}

func TestCartNeedsLoginQuoteDoesNot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anon := domain.Anonymous()

	_, err := f.carts.Add(ctx, cart.CartKind, "sid-1", anon, "ip13-bat")
	assert.ErrorIs(t, err, services.ErrNotAvailable)
	_, err = f.carts.View(ctx, cart.CartKind, "sid-1", anon)
	assert.ErrorIs(t, err, services.ErrNotAvailable)

	v, err := f.carts.Add(ctx, cart.QuoteKind, "sid-1", anon, "ip13-bat")
	require.NoError(t, err)
	assert.Equal(t, 1, v.ItemCount)
	assert.Equal(t, "quote", v.Kind)
}

func TestAddPricesByRoleAndLocksPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dealer := f.login(t, "sid-d", domain.RoleDealer)

	v, err := f.carts.Add(ctx, cart.CartKind, "sid-d", dealer, "kit-pro")
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	// 69.99 at the dealer discount
	assert.Equal(t, "55.99", v.Items[0].Price.StringFixed(2))

	f.db.MustExec(`UPDATE products SET price='10.00' WHERE id='kit-pro'`)
	v, err = f.carts.Add(ctx, cart.CartKind, "sid-d", dealer, "kit-pro")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Items[0].Quantity)
	assert.Equal(t, "55.99", v.Items[0].Price.StringFixed(2))
	assert.Equal(t, "111.98", v.Subtotal.StringFixed(2))
}

func TestAddUnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.carts.Add(context.Background(), cart.QuoteKind, "sid", domain.Anonymous(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetQuantityRemoveClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anon := domain.Anonymous()
	for _, id := range []string{"ip13-bat", "s21-port", "kit-pro"} {
		_, err := f.carts.Add(ctx, cart.QuoteKind, "sid", anon, id)
		require.NoError(t, err)
	}

	v, err := f.carts.SetQuantity(ctx, cart.QuoteKind, "sid", anon, "s21-port", 4)
	require.NoError(t, err)
	assert.Equal(t, 6, v.ItemCount)

	v, err = f.carts.SetQuantity(ctx, cart.QuoteKind, "sid", anon, "ip13-bat", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, len(v.Items))

	v, err = f.carts.Remove(ctx, cart.QuoteKind, "sid", anon, "kit-pro")
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "s21-port", v.Items[0].ProductID)

	v, err = f.carts.Clear(ctx, cart.QuoteKind, "sid", anon)
	require.NoError(t, err)
	assert.Empty(t, v.Items)

	v, err = f.carts.View(ctx, cart.QuoteKind, "sid", anon)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
}

func TestAdoptQuoteOnLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anon := domain.Anonymous()

	_, err := f.carts.Add(ctx, cart.QuoteKind, "sid-w", anon, "ip13-bat")
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, cart.QuoteKind, "sid-w", anon, "kit-pro")
	require.NoError(t, err)

	walt := f.login(t, "sid-w", domain.RoleWholesale)
	// walt already had one battery from another device
	_, err = f.carts.Add(ctx, cart.QuoteKind, "other-device", walt, "ip13-bat")
	require.NoError(t, err)

	require.NoError(t, f.carts.AdoptQuote(ctx, "sid-w", walt))

	v, err := f.carts.View(ctx, cart.QuoteKind, "sid-w", walt)
	require.NoError(t, err)
	require.Len(t, v.Items, 2)
	assert.Equal(t, 2, v.Items[0].Quantity)
	// the user's line keeps its wholesale price
	assert.Equal(t, "22.49", v.Items[0].Price.StringFixed(2))
	// the adopted line keeps its retail price
	assert.Equal(t, "69.99", v.Items[1].Price.StringFixed(2))

	left, err := f.carts.View(ctx, cart.QuoteKind, "sid-w", anon)
	require.NoError(t, err)
	assert.Empty(t, left.Items)

	require.NoError(t, f.carts.AdoptQuote(ctx, "sid-w", anon), "anonymous adopt is a no-op")
}

func TestConcurrentAddsForOneOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anon := domain.Anonymous()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.carts.Add(ctx, cart.QuoteKind, "busy", anon, "ip13-bat"); err != nil {
				errs <- fmt.Errorf("add: %w", err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	v, err := f.carts.View(ctx, cart.QuoteKind, "busy", anon)
	require.NoError(t, err)
	assert.Equal(t, 20, v.ItemCount)
}

func TestCorruptSlotResetsStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.slots.For("s:bad").Save(ctx, "quote", []byte(`{"not":"a list"}`)))

	v, err := f.carts.View(ctx, cart.QuoteKind, "bad", domain.Anonymous())
	require.NoError(t, err)
	assert.Empty(t, v.Items)
}
