package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"partsstore/internal/domain"
)

// PlaceholderImage stands in for products that arrive without images.
const PlaceholderImage = "/static/img/placeholder.png"

// RawProduct is a product record as it arrives from an import file or any
// other loosely typed source. Every field is optional.
type RawProduct struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Price              *decimal.Decimal `json:"price"`
	OriginalPrice      *decimal.Decimal `json:"originalPrice"`
	Brand              string           `json:"brand"`
	Category           string           `json:"category"`
	Condition          string           `json:"condition"`
	Stock              *int             `json:"stock"`
	Image              string           `json:"image"`
	Images             []string         `json:"images"`
	Description        string           `json:"description"`
	Tags               []string         `json:"tags"`
	DiscountPercentage *int             `json:"discountPercentage"`
	Popularity         *int             `json:"popularity"`
	CreatedAt          string           `json:"createdAt"`
}

// Normalize turns a raw record into a Product, applying defaults for anything
// cosmetic and rejecting records without an id, a name or a valid price.
func Normalize(r RawProduct) (domain.Product, error) {
	p := domain.Product{
		ID:          strings.TrimSpace(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Brand:       strings.TrimSpace(r.Brand),
		Category:    strings.TrimSpace(r.Category),
		Description: strings.TrimSpace(r.Description),
		CreatedAt:   strings.TrimSpace(r.CreatedAt),
	}
	if p.ID == "" {
		return domain.Product{}, domain.NewInvalidArgument("id", "cannot be empty", r.ID)
	}
	if p.Name == "" {
		return domain.Product{}, domain.NewInvalidArgument("name", "cannot be empty", r.Name)
	}
	if r.Price == nil {
		return domain.Product{}, domain.NewInvalidArgument("price", "missing", nil)
	}
	if r.Price.IsNegative() {
		return domain.Product{}, domain.NewInvalidArgument("price", "must be non-negative", r.Price.String())
	}
	p.Price = *r.Price

	if r.OriginalPrice != nil && r.OriginalPrice.GreaterThanOrEqual(p.Price) {
		p.OriginalPrice = decimal.NewNullDecimal(*r.OriginalPrice)
	}
	if p.Brand == "" {
		p.Brand = "Unknown"
	}
	if p.Category == "" {
		p.Category = "Uncategorized"
	}
	if c, ok := domain.ParseCondition(r.Condition); ok {
		p.Condition = c
	} else {
		p.Condition = domain.ConditionNew
	}
	if r.Stock != nil && *r.Stock > 0 {
		p.Stock = *r.Stock
	}
	if r.Popularity != nil && *r.Popularity > 0 {
		p.Popularity = *r.Popularity
	}
	if r.DiscountPercentage != nil {
		p.DiscountPercentage = clamp(*r.DiscountPercentage, 0, 100)
	}

	for _, img := range append([]string{r.Image}, r.Images...) {
		if img = strings.TrimSpace(img); img != "" && !contains(p.Images, img) {
			p.Images = append(p.Images, img)
		}
	}
	if len(p.Images) == 0 {
		p.Images = []string{PlaceholderImage}
	}
	p.Tags = CleanTags(r.Tags)
	return p, nil
}

// Rejection records why an input record was skipped.
type Rejection struct {
	Index  int
	ID     string
	Reason string
}

func (r Rejection) String() string {
	return fmt.Sprintf("#%d (%s): %s", r.Index, r.ID, r.Reason)
}

// NormalizeAll keeps every record that normalises and reports the rest.
func NormalizeAll(raw []RawProduct) ([]domain.Product, []Rejection) {
	out := make([]domain.Product, 0, len(raw))
	var rejected []Rejection
	seen := map[string]bool{}
	for i, r := range raw {
		p, err := Normalize(r)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, ID: r.ID, Reason: err.Error()})
			continue
		}
		if seen[p.ID] {
			rejected = append(rejected, Rejection{Index: i, ID: p.ID, Reason: "duplicate id"})
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, rejected
}

// CleanTags trims tags, drops blanks and case-insensitive duplicates.
func CleanTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		k := strings.ToLower(t)
		if t == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
