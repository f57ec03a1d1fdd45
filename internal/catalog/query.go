package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"partsstore/internal/domain"
	"partsstore/internal/validate"
)

// ParseQuery reads a FilterState from listing query parameters: search,
// brands, categories, conditions, devices and partTypes (one value per
// repeated key), minPrice, maxPrice, bucket, inStock and sort.
func ParseQuery(v url.Values) (FilterState, error) {
	search, ok := validate.Q(v.Get("search"))
	if !ok {
		return FilterState{}, domain.NewInvalidArgument("search", "letters, digits, spaces and _'.- only", v.Get("search"))
	}
	f := FilterState{
		Search:     search,
		Brands:     listValues(v["brands"]),
		Categories: listValues(v["categories"]),
		Devices:    listValues(v["devices"]),
		PartTypes:  listValues(v["partTypes"]),
		Sort:       SortKey(strings.TrimSpace(v.Get("sort"))),
	}
	if f.Sort == "" {
		f.Sort = SortNewest
	}
	for _, s := range listValues(v["conditions"]) {
		c, ok := validate.Condition(s)
		if !ok {
			return FilterState{}, domain.NewInvalidArgument("conditions", "must be New, Used or Refurbished", s)
		}
		f.Conditions = append(f.Conditions, string(c))
	}

	minS, maxS := strings.TrimSpace(v.Get("minPrice")), strings.TrimSpace(v.Get("maxPrice"))
	if minS != "" || maxS != "" {
		r := &PriceRange{Min: decimal.Zero}
		if minS != "" {
			d, err := decimal.NewFromString(minS)
			if err != nil {
				return FilterState{}, domain.NewInvalidArgument("minPrice", "not a number", minS)
			}
			r.Min = d
		}
		if maxS != "" {
			d, err := decimal.NewFromString(maxS)
			if err != nil {
				return FilterState{}, domain.NewInvalidArgument("maxPrice", "not a number", maxS)
			}
			r.Max = decimal.NewNullDecimal(d)
		}
		f.PriceRange = r
	} else if id := strings.TrimSpace(v.Get("bucket")); id != "" {
		b, ok := BucketByID(id)
		if !ok {
			return FilterState{}, domain.NewInvalidArgument("bucket", "unknown price bucket", id)
		}
		f.PriceRange = b.Range()
	}

	if s := strings.TrimSpace(v.Get("inStock")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return FilterState{}, domain.NewInvalidArgument("inStock", "not a boolean", s)
		}
		f.InStockOnly = b
	}
	if err := f.Validate(); err != nil {
		return FilterState{}, err
	}
	return f, nil
}

// Encode renders f as a query string, leaving out defaults. Set values are
// written as repeated keys so a value may itself contain a comma.
func (f FilterState) Encode() string {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	setList(v, "brands", f.Brands)
	setList(v, "categories", f.Categories)
	setList(v, "conditions", f.Conditions)
	setList(v, "devices", f.Devices)
	setList(v, "partTypes", f.PartTypes)
	if f.PriceRange != nil {
		v.Set("minPrice", f.PriceRange.Min.String())
		if f.PriceRange.Max.Valid {
			v.Set("maxPrice", f.PriceRange.Max.Decimal.String())
		}
	}
	if f.InStockOnly {
		v.Set("inStock", "true")
	}
	if f.Sort != "" && f.Sort != SortNewest {
		v.Set("sort", string(f.Sort))
	}
	return v.Encode()
}

func setList(v url.Values, key string, values []string) {
	for _, s := range values {
		v.Add(key, s)
	}
}

func listValues(values []string) []string {
	var out []string
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
