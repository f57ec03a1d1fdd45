// Package catalog narrows, orders, counts and pages product listings.
package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"partsstore/internal/domain"
)

type SortKey string

const (
	SortNewest      SortKey = "newest"
	SortPriceAsc    SortKey = "price-asc"
	SortPriceDesc   SortKey = "price-desc"
	SortName        SortKey = "name"
	SortMostPopular SortKey = "most-popular"
)

func (k SortKey) Valid() bool {
	switch k {
	case "", SortNewest, SortPriceAsc, SortPriceDesc, SortName, SortMostPopular:
		return true
	}
	return false
}

// PriceRange bounds the effective price, both ends inclusive. An invalid Max
// leaves the range open above.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.NullDecimal
}

// Between is the closed range [min, max].
func Between(min, max decimal.Decimal) *PriceRange {
	return &PriceRange{Min: min, Max: decimal.NewNullDecimal(max)}
}

// AtLeast is the range [min, +inf).
func AtLeast(min decimal.Decimal) *PriceRange {
	return &PriceRange{Min: min}
}

func (r PriceRange) Contains(p decimal.Decimal) bool {
	if p.LessThan(r.Min) {
		return false
	}
	return !r.Max.Valid || p.LessThanOrEqual(r.Max.Decimal)
}

// FilterState is the user's current selection. Empty sets match everything;
// a nil PriceRange is unbounded. Devices and PartTypes match by substring,
// the other sets by case-insensitive equality.
type FilterState struct {
	Search      string
	Brands      []string
	Categories  []string
	Conditions  []string
	Devices     []string
	PartTypes   []string
	PriceRange  *PriceRange
	InStockOnly bool
	Sort        SortKey
}

func (f FilterState) Validate() error {
	if f.PriceRange != nil {
		if f.PriceRange.Min.IsNegative() {
			return domain.NewInvalidArgument("priceRange.min", "must be non-negative", f.PriceRange.Min.String())
		}
		if max := f.PriceRange.Max; max.Valid && f.PriceRange.Min.GreaterThan(max.Decimal) {
			return domain.NewInvalidArgument("priceRange", "min exceeds max",
				f.PriceRange.Min.String()+">"+max.Decimal.String())
		}
	}
	if !f.Sort.Valid() {
		return domain.NewInvalidArgument("sort", "unknown sort key", f.Sort)
	}
	return nil
}

// Matches reports whether p passes every predicate of f.
func (f FilterState) Matches(p domain.Product) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" && !matchesSearch(p, q) {
		return false
	}
	if !inSet(f.Brands, p.Brand) || !inSet(f.Categories, p.Category) || !inSet(f.Conditions, string(p.Condition)) {
		return false
	}
	if len(f.Devices) > 0 && !anyContained(f.Devices, p.Name) {
		return false
	}
	if len(f.PartTypes) > 0 && !anyContained(f.PartTypes, p.Name, p.Description, p.Category) {
		return false
	}
	if f.PriceRange != nil && !f.PriceRange.Contains(p.EffectivePrice()) {
		return false
	}
	if f.InStockOnly && !p.InStock() {
		return false
	}
	return true
}

// FilterAndSort returns the products matching filters, ordered by the
// requested key. Ties keep their input order. products is not modified.
func FilterAndSort(products []domain.Product, filters FilterState) ([]domain.Product, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if filters.Matches(p) {
			out = append(out, p)
		}
	}
	sortProducts(out, filters.Sort)
	return out, nil
}

func sortProducts(ps []domain.Product, key SortKey) {
	var less func(a, b domain.Product) bool
	switch key {
	case SortPriceAsc:
		less = func(a, b domain.Product) bool { return a.EffectivePrice().LessThan(b.EffectivePrice()) }
	case SortPriceDesc:
		less = func(a, b domain.Product) bool { return a.EffectivePrice().GreaterThan(b.EffectivePrice()) }
	case SortName:
		less = func(a, b domain.Product) bool { return a.Name < b.Name }
	case SortMostPopular:
		less = func(a, b domain.Product) bool { return a.Popularity > b.Popularity }
	default:
		// newest: the catalog already hands products over newest first
		return
	}
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

func matchesSearch(p domain.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func inSet(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}

// anyContained reports whether some needle occurs in some haystack, ignoring
// case.
func anyContained(needles []string, haystacks ...string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), n) {
				return true
			}
		}
	}
	return false
}
