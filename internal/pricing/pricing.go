// Package pricing derives role-adjusted display prices.
//
// The discount table is static policy. Changing a tier's discount is a code
// change, not configuration.
package pricing

import (
	"github.com/shopspring/decimal"

	"partsstore/internal/domain"
)

var discounts = map[domain.Role]decimal.Decimal{
	domain.RoleRetail:    decimal.Zero,
	domain.RoleWholesale: decimal.RequireFromString("0.10"),
	domain.RoleDealer:    decimal.RequireFromString("0.20"),
	domain.RoleAdmin:     decimal.RequireFromString("0.30"),
}

// Badge is the label shown next to a role-adjusted price.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var badges = map[domain.Role]Badge{
	domain.RoleRetail:    {Label: "Retail", Color: "gray"},
	domain.RoleWholesale: {Label: "Wholesale", Color: "blue"},
	domain.RoleDealer:    {Label: "Dealer", Color: "green"},
	domain.RoleAdmin:     {Label: "Admin", Color: "purple"},
}

// Discount returns the fractional discount for role (0.10 for 10%).
func Discount(role domain.Role) (decimal.Decimal, error) {
	d, ok := discounts[role]
	if !ok {
		return decimal.Zero, domain.NewInvalidArgument("role", "unknown role", role)
	}
	return d, nil
}

// DisplayPrice applies the role discount to base and rounds half-up to cents.
func DisplayPrice(base decimal.Decimal, role domain.Role) (decimal.Decimal, error) {
	if base.IsNegative() {
		return decimal.Zero, domain.NewInvalidArgument("price", "must be non-negative", base.String())
	}
	d, err := Discount(role)
	if err != nil {
		return decimal.Zero, err
	}
	return base.Mul(decimal.NewFromInt(1).Sub(d)).Round(2), nil
}

// BadgeFor returns the price badge shown for role.
func BadgeFor(role domain.Role) (Badge, error) {
	b, ok := badges[role]
	if !ok {
		return Badge{}, domain.NewInvalidArgument("role", "unknown role", role)
	}
	return b, nil
}

// Quote is the full price breakdown of a product for one role.
type Quote struct {
	Base      decimal.Decimal `json:"base"`
	Effective decimal.Decimal `json:"effective"`
	Display   decimal.Decimal `json:"display"`
	Role      domain.Role     `json:"role"`
	Badge     Badge           `json:"badge"`
}

// QuoteFor applies the product's own discount first, then the role discount.
func QuoteFor(p domain.Product, role domain.Role) (Quote, error) {
	eff := p.EffectivePrice()
	display, err := DisplayPrice(eff, role)
	if err != nil {
		return Quote{}, err
	}
	badge, err := BadgeFor(role)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Base: p.Price, Effective: eff, Display: display, Role: role, Badge: badge}, nil
}
