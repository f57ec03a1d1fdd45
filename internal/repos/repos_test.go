package repos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"partsstore/internal/cart"
	"partsstore/internal/domain"
	"partsstore/internal/repos"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSeedUsersAreHashedPerRole(t *testing.T) {
	db := openDB(t)
	var rows []struct {
		Role string `db:"role"`
		Hash string `db:"password_hash"`
	}
	require.NoError(t, db.Select(&rows, `SELECT role, password_hash FROM users ORDER BY role`))
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.NotContains(t, r.Hash, repos.SeedPassword)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(r.Hash), []byte(repos.SeedPassword)))
	}
}

func TestListActiveNewestFirst(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	products, err := repos.NewProductRepo(db).ListActive(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, products)
	assert.Equal(t, "ip13-oled", products[0].ID)
	assert.Equal(t, "Screens", products[0].Category)
	assert.Equal(t, "129.99", products[0].Price.StringFixed(2))
	assert.True(t, products[0].OriginalPrice.Valid)
	for i := 1; i < len(products); i++ {
		assert.GreaterOrEqual(t, products[i-1].CreatedAt, products[i].CreatedAt)
	}
}

func TestMalformedRowsAreNormalisedOrSkipped(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	db.MustExec(`INSERT INTO products(id,category_id,name,condition,price,images_json,tags_json,discount_percentage,created_at)
		VALUES('odd','tools','Odd Part','Used','5.00','not json','["a","A"]',250,'2030-01-01T00:00:00Z')`)
	db.MustExec(`INSERT INTO products(id,category_id,name,condition,price,created_at)
		VALUES('bad-price','tools','Broken','New','abc','2030-01-02T00:00:00Z')`)

	repo := repos.NewProductRepo(db)
	products, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "odd", products[0].ID, "unpriced row skipped")
	assert.Equal(t, 100, products[0].DiscountPercentage)
	assert.Equal(t, []string{"a"}, products[0].Tags)
	assert.NotEmpty(t, products[0].Images)

	_, err = repo.Get(ctx, "bad-price")
	assert.True(t, domain.IsInvalidArgument(err))
	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertCreatesCategory(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	repo := repos.NewProductRepo(db)

	p := domain.Product{
		ID: "fold-hinge", Name: "Fold Hinge", Price: decimal.RequireFromString("33.10"),
		Brand: "Samsung", Category: "Hinges & Frames", Condition: domain.ConditionNew,
		Stock: 2, Images: []string{"/x.png"}, Tags: []string{"fold"},
	}
	require.NoError(t, repo.Upsert(ctx, []domain.Product{p}))
	p.Stock = 7
	require.NoError(t, repo.Upsert(ctx, []domain.Product{p}))

	got, err := repo.Get(ctx, "fold-hinge")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
	assert.Equal(t, "Hinges & Frames", got.Category)

	byCat, err := repo.ListByCategory(ctx, "hinges-frames")
	require.NoError(t, err)
	require.Len(t, byCat, 1)

	cats, err := repos.NewCategoryRepo(db).List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 6)
}

func TestSlotRepoRoundTrip(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	slots := repos.NewSlotRepo(db)

	b, err := slots.For("s:abc").Load(ctx, "cart")
	require.NoError(t, err)
	assert.Nil(t, b)

	st := cart.Open(ctx, "quote", slots.For("s:abc"), nil)
	require.NoError(t, st.Add(ctx, cart.NewItem{ProductID: "ip13-bat", Name: "Battery", Price: decimal.RequireFromString("24.99")}))
	require.NoError(t, st.Add(ctx, cart.NewItem{ProductID: "ip13-bat", Name: "Battery", Price: decimal.RequireFromString("1")}))

	again := cart.Open(ctx, "quote", slots.For("s:abc"), nil)
	require.Equal(t, 1, again.Len())
	assert.Equal(t, 2, again.Items()[0].Quantity)
	assert.Equal(t, "49.98", again.Subtotal().StringFixed(2))

	other := cart.Open(ctx, "quote", slots.For("s:other"), nil)
	assert.Equal(t, 0, other.Len())

	require.NoError(t, slots.Delete(ctx, "s:abc"))
	assert.Equal(t, 0, cart.Open(ctx, "quote", slots.For("s:abc"), nil).Len())
}

func TestOrderPlaceIsAtomic(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	orders := repos.NewOrderRepo(db)
	inv := repos.NewInventoryRepo(db)

	before, err := inv.Qty(ctx, "ip13-bat")
	require.NoError(t, err)

	err = orders.Place(ctx, repos.NewOrder{
		ID: "o-fail", UserID: "u-rita", Total: decimal.NewFromInt(1),
		Items: []repos.OrderItemRow{
			{ProductID: "ip13-bat", Name: "Battery", Qty: 1, Price: decimal.NewFromInt(1)},
			{ProductID: "px6-bat", Name: "Pixel", Qty: 1, Price: decimal.NewFromInt(1)},
		},
	})
	var ise *repos.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "px6-bat", ise.ProductID)

	after, _ := inv.Qty(ctx, "ip13-bat")
	assert.Equal(t, before, after, "rolled back")
	_, _, err = orders.Get(ctx, "o-fail")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, orders.Place(ctx, repos.NewOrder{
		ID: "o-ok", UserID: "u-rita", Fulfillment: "pickup",
		Subtotal: decimal.RequireFromString("49.98"), Tax: decimal.RequireFromString("2.50"),
		Total: decimal.RequireFromString("52.48"),
		Items: []repos.OrderItemRow{{ProductID: "ip13-bat", Name: "Battery", Qty: 2, Price: decimal.RequireFromString("24.99")}},
	}))
	after, _ = inv.Qty(ctx, "ip13-bat")
	assert.Equal(t, before-2, after)

	o, items, err := orders.Get(ctx, "o-ok")
	require.NoError(t, err)
	assert.Equal(t, "49.98", o.Subtotal.StringFixed(2))
	assert.Equal(t, "2.50", o.Tax.StringFixed(2))
	assert.True(t, o.Shipping.IsZero())
	assert.Equal(t, "52.48", o.Total.StringFixed(2))
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)

	mine, err := orders.ListByUser(ctx, "u-rita")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.NoError(t, orders.UpdateStatus(ctx, "o-ok", "SHIPPED"))
	assert.True(t, domain.IsInvalidArgument(orders.UpdateStatus(ctx, "o-ok", "LOST")))
	assert.ErrorIs(t, orders.UpdateStatus(ctx, "missing", "PAID"), domain.ErrNotFound)
}

func TestInventorySetStock(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	inv := repos.NewInventoryRepo(db)

	require.NoError(t, inv.SetStock(ctx, "px6-bat", 9))
	q, err := inv.Qty(ctx, "px6-bat")
	require.NoError(t, err)
	assert.Equal(t, 9, q)

	assert.True(t, domain.IsInvalidArgument(inv.SetStock(ctx, "px6-bat", -1)))
	assert.ErrorIs(t, inv.SetStock(ctx, "ghost", 1), domain.ErrNotFound)
	_, err = inv.Qty(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rows, err := inv.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 9)
}

func TestQuoteRepo(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	quotes := repos.NewQuoteRepo(db)

	require.NoError(t, quotes.Create(ctx, repos.QuoteRow{
		ID: "q1", SessionID: "sid", Name: "Pat", Email: "pat@shop.test", Company: "Fix-It",
		ItemsJSON: `[{"productId":"kit-pro","quantity":3}]`, Subtotal: decimal.RequireFromString("209.97"),
	}))
	q, err := quotes.Get(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "NEW", q.Status)
	assert.Equal(t, "", q.Phone)
	assert.Equal(t, "209.97", q.Subtotal.StringFixed(2))

	list, err := quotes.ListLatest(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = quotes.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
