package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsstore/internal/domain"
	"partsstore/internal/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDisplayPrice(t *testing.T) {
	cases := []struct {
		base string
		role domain.Role
		want string
	}{
		{"100.00", domain.RoleWholesale, "90.00"},
		{"49.99", domain.RoleDealer, "39.99"},
		{"49.99", domain.RoleRetail, "49.99"},
		{"10.00", domain.RoleAdmin, "7.00"},
		{"0", domain.RoleAdmin, "0.00"},
		// 0.05 * 0.9 = 0.045 rounds half-up
		{"0.05", domain.RoleWholesale, "0.05"},
		// 1.15 * 0.7 = 0.805
		{"1.15", domain.RoleAdmin, "0.81"},
	}
	for _, tc := range cases {
		got, err := pricing.DisplayPrice(dec(tc.base), tc.role)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.StringFixed(2), "%s as %s", tc.base, tc.role)
	}
}

func TestDisplayPriceRejectsBadInput(t *testing.T) {
	_, err := pricing.DisplayPrice(dec("-0.01"), domain.RoleRetail)
	assert.True(t, domain.IsInvalidArgument(err))

	_, err = pricing.DisplayPrice(dec("10"), domain.Role("vip"))
	assert.True(t, domain.IsInvalidArgument(err))
}

func TestDiscountsIncreaseWithRole(t *testing.T) {
	prev := dec("-1")
	for _, r := range domain.Roles {
		d, err := pricing.Discount(r)
		require.NoError(t, err)
		assert.True(t, d.GreaterThan(prev), "role %s", r)
		prev = d
	}
}

func TestBadgeFor(t *testing.T) {
	for _, r := range domain.Roles {
		b, err := pricing.BadgeFor(r)
		require.NoError(t, err)
		assert.NotEmpty(t, b.Label)
		assert.NotEmpty(t, b.Color)
	}
	b, _ := pricing.BadgeFor(domain.RoleDealer)
	assert.Equal(t, pricing.Badge{Label: "Dealer", Color: "green"}, b)

	_, err := pricing.BadgeFor("")
	assert.True(t, domain.IsInvalidArgument(err))
}

func TestQuoteForStacksProductAndRoleDiscounts(t *testing.T) {
	p := domain.Product{ID: "p1", Price: dec("200.00"), DiscountPercentage: 25}
	q, err := pricing.QuoteFor(p, domain.RoleWholesale)
	require.NoError(t, err)
	assert.Equal(t, "150.00", q.Effective.StringFixed(2))
	assert.Equal(t, "135.00", q.Display.StringFixed(2))
	assert.Equal(t, "Wholesale", q.Badge.Label)
}
