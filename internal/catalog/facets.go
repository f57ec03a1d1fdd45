package catalog

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"partsstore/internal/domain"
)

type FacetValue struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type AvailabilityCounts struct {
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
}

// FacetCounts annotates the filter controls with "(n)" counts.
type FacetCounts struct {
	Total        int                `json:"total"`
	Brands       []FacetValue       `json:"brands"`
	Categories   []FacetValue       `json:"categories"`
	Conditions   []FacetValue       `json:"conditions"`
	Devices      []FacetValue       `json:"devices"`
	PartTypes    []FacetValue       `json:"partTypes"`
	PriceBuckets []FacetValue       `json:"priceBuckets"`
	Availability AvailabilityCounts `json:"availability"`
}

// PriceBucket is a half-open effective price interval [Min, Max). A zero Max
// means no upper bound.
type PriceBucket struct {
	ID   string
	Name string
	Min  decimal.Decimal
	Max  decimal.Decimal
}

func (b PriceBucket) Contains(p decimal.Decimal) bool {
	if p.LessThan(b.Min) {
		return false
	}
	return b.Max.IsZero() || p.LessThan(b.Max)
}

// Range converts the bucket to the inclusive range the filter engine takes.
// Effective prices are whole cents, so [Min, Max) is [Min, Max-0.01].
func (b PriceBucket) Range() *PriceRange {
	if b.Max.IsZero() {
		return AtLeast(b.Min)
	}
	return Between(b.Min, b.Max.Sub(decimal.New(1, -2)))
}

var PriceBuckets = []PriceBucket{
	{ID: "under-50", Name: "Under $50", Min: decimal.Zero, Max: decimal.NewFromInt(50)},
	{ID: "50-99", Name: "$50 - $99", Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(100)},
	{ID: "100-199", Name: "$100 - $199", Min: decimal.NewFromInt(100), Max: decimal.NewFromInt(200)},
	{ID: "200-plus", Name: "$200+", Min: decimal.NewFromInt(200)},
}

// DevicePatterns are matched against product names to derive the device
// facet.
var DevicePatterns = []string{
	"iPhone", "iPad", "Apple Watch", "MacBook", "Galaxy", "Pixel", "OnePlus", "Motorola",
}

// PartTypePatterns are matched against product names and descriptions to
// derive the part type facet.
var PartTypePatterns = []string{
	"Screen", "Display", "Battery", "Camera", "Charging Port", "Back Glass",
	"Screen Protector", "Case", "Cable", "Charger", "Headphones", "Speakers",
}

// BucketByID finds a price bucket by its id.
func BucketByID(id string) (PriceBucket, bool) {
	for _, b := range PriceBuckets {
		if b.ID == id {
			return b, true
		}
	}
	return PriceBucket{}, false
}

// CalculateFacetCounts counts every product it is given, independent of any
// active selection. Values appear in first-seen order.
func CalculateFacetCounts(products []domain.Product) FacetCounts {
	fc := FacetCounts{
		Total:        len(products),
		Brands:       []FacetValue{},
		Categories:   []FacetValue{},
		Conditions:   []FacetValue{},
		Devices:      []FacetValue{},
		PartTypes:    []FacetValue{},
		PriceBuckets: make([]FacetValue, len(PriceBuckets)),
	}
	for i, b := range PriceBuckets {
		fc.PriceBuckets[i] = FacetValue{ID: b.ID, Name: b.Name}
	}

	brands, cats, conds := map[string]int{}, map[string]int{}, map[string]int{}
	devices, parts := map[string]int{}, map[string]int{}
	for _, p := range products {
		fc.Brands = bump(fc.Brands, brands, p.Brand)
		fc.Categories = bump(fc.Categories, cats, p.Category)
		fc.Conditions = bump(fc.Conditions, conds, string(p.Condition))
		for _, d := range DevicePatterns {
			if anyContained([]string{d}, p.Name) {
				fc.Devices = bump(fc.Devices, devices, d)
			}
		}
		for _, pt := range PartTypePatterns {
			if anyContained([]string{pt}, p.Name, p.Description) {
				fc.PartTypes = bump(fc.PartTypes, parts, pt)
			}
		}

		eff := p.EffectivePrice()
		for i, b := range PriceBuckets {
			if b.Contains(eff) {
				fc.PriceBuckets[i].Count++
				break
			}
		}
		if p.InStock() {
			fc.Availability.InStock++
		} else {
			fc.Availability.OutOfStock++
		}
	}
	return fc
}

func bump(values []FacetValue, pos map[string]int, name string) []FacetValue {
	if i, ok := pos[name]; ok {
		values[i].Count++
		return values
	}
	pos[name] = len(values)
	return append(values, FacetValue{ID: Slug(name), Name: name, Count: 1})
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and joins its words with dashes.
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
