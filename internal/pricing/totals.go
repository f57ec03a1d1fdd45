package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"partsstore/internal/domain"
)

// Checkout policy. Like the role table, these are code, not configuration.
var (
	TaxRate          = decimal.RequireFromString("0.05")
	ShippingFee      = decimal.NewFromInt(25)
	FreeShippingOver = decimal.NewFromInt(500)
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// DiscountCode is a promotional code applied to a whole cart.
type DiscountCode struct {
	Code        string          `json:"code"`
	Kind        DiscountKind    `json:"kind"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
}

var discountCodes = map[string]DiscountCode{
	"WELCOME10": {Code: "WELCOME10", Kind: DiscountPercentage, Value: decimal.NewFromInt(10), Description: "10% off first order"},
	"TECH15":    {Code: "TECH15", Kind: DiscountPercentage, Value: decimal.NewFromInt(15), Description: "15% off for technicians"},
	"BULK20":    {Code: "BULK20", Kind: DiscountPercentage, Value: decimal.NewFromInt(20), Description: "20% off bulk orders"},
	"SAVE50":    {Code: "SAVE50", Kind: DiscountFixed, Value: decimal.NewFromInt(50), Description: "50 off"},
}

// LookupDiscountCode finds a code, ignoring case and surrounding space.
func LookupDiscountCode(code string) (DiscountCode, error) {
	dc, ok := discountCodes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return DiscountCode{}, domain.NewInvalidArgument("discountCode", "unknown discount code", code)
	}
	return dc, nil
}

// Amount is what the code takes off subtotal, never more than subtotal.
func (d DiscountCode) Amount(subtotal decimal.Decimal) decimal.Decimal {
	var amt decimal.Decimal
	switch d.Kind {
	case DiscountPercentage:
		amt = subtotal.Mul(d.Value).Div(hundred).Round(2)
	case DiscountFixed:
		amt = d.Value
	}
	return decimal.Min(amt, subtotal)
}

var hundred = decimal.NewFromInt(100)

// Totals is the full money breakdown of a cart.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	DiscountCode string          `json:"discountCode,omitempty"`
	Tax          decimal.Decimal `json:"tax"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
}

// ComputeTotals prices a cart whose lines already carry locked prices. Tax
// is charged on the discounted subtotal. Shipping applies to deliveries of
// a non-empty cart up to FreeShippingOver. Every component is rounded to
// cents, so Total is their exact sum.
func ComputeTotals(subtotal decimal.Decimal, code *DiscountCode, delivery bool) Totals {
	t := Totals{Subtotal: subtotal.Round(2), Discount: decimal.Zero, Shipping: decimal.Zero}
	if code != nil {
		t.Discount = code.Amount(t.Subtotal)
		t.DiscountCode = code.Code
	}
	taxable := t.Subtotal.Sub(t.Discount)
	t.Tax = taxable.Mul(TaxRate).Round(2)
	if delivery && t.Subtotal.IsPositive() && t.Subtotal.LessThanOrEqual(FreeShippingOver) {
		t.Shipping = ShippingFee
	}
	t.Total = taxable.Add(t.Tax).Add(t.Shipping)
	return t
}
