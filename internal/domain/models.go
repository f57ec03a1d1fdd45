package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"-"`
	UpdatedAt string `db:"updated_at" json:"-"`
}

type Condition string

const (
	ConditionNew         Condition = "New"
	ConditionUsed        Condition = "Used"
	ConditionRefurbished Condition = "Refurbished"
)

// ParseCondition matches case-insensitively; ok is false for unknown values.
func ParseCondition(s string) (Condition, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return ConditionNew, true
	case "used":
		return ConditionUsed, true
	case "refurbished":
		return ConditionRefurbished, true
	}
	return "", false
}

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Price              decimal.Decimal     `json:"price"`
	OriginalPrice      decimal.NullDecimal `json:"originalPrice"`
	Brand              string              `json:"brand"`
	Category           string              `json:"category"`
	Condition          Condition           `json:"condition"`
	Stock              int                 `json:"stock"`
	Images             []string            `json:"images"`
	Description        string              `json:"description"`
	Tags               []string            `json:"tags"`
	DiscountPercentage int                 `json:"discountPercentage"`
	Popularity         int                 `json:"popularity"`
	CreatedAt          string              `json:"createdAt"`
}

// EffectivePrice is the price after the product's own discount, before any
// role-based discount.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPercentage <= 0 {
		return p.Price
	}
	pct := decimal.NewFromInt(int64(p.DiscountPercentage))
	return p.Price.Mul(hundred.Sub(pct)).Div(hundred).Round(2)
}

func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Product) InStock() bool { return p.Stock > 0 }

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
	ETA    string `json:"eta,omitempty"`
}
