package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"partsstore/internal/catalog"
	"partsstore/internal/domain"
	applog "partsstore/internal/log"
	"partsstore/internal/metrics"
	"partsstore/internal/repos"
)

// ProductSource is the catalog read side.
type ProductSource interface {
	ListActive(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
}

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods ProductSource
}

func NewCatalogService(cats *repos.CategoryRepo, prods ProductSource) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

// Listing is one page of a filtered catalog plus the facet counts of the
// whole catalog.
type Listing struct {
	Products    []domain.Product    `json:"products"`
	Page        catalog.PageInfo    `json:"page"`
	Facets      catalog.FacetCounts `json:"facets"`
	Query       string              `json:"query"`
	Unavailable bool                `json:"unavailable,omitempty"`
}

// Browse filters, sorts and pages the active catalog. Only invalid filters
// produce an error; a failing product source yields an empty listing marked
// Unavailable.
func (s *CatalogService) Browse(ctx context.Context, filters catalog.FilterState, page, perPage int) (Listing, error) {
	if err := filters.Validate(); err != nil {
		return Listing{}, err
	}
	start := time.Now()
	defer func() { metrics.BrowseDuration.Observe(time.Since(start).Seconds()) }()

	all, err := s.Prods.ListActive(ctx)
	if err != nil {
		applog.L().Error("catalog unavailable", zap.Error(err))
		items, info := catalog.Paginate(nil, page, perPage)
		return Listing{
			Products:    items,
			Page:        info,
			Facets:      catalog.CalculateFacetCounts(nil),
			Query:       filters.Encode(),
			Unavailable: true,
		}, nil
	}
	matched, err := catalog.FilterAndSort(all, filters)
	if err != nil {
		return Listing{}, err
	}
	items, info := catalog.Paginate(matched, page, perPage)
	return Listing{
		Products: items,
		Page:     info,
		Facets:   catalog.CalculateFacetCounts(all),
		Query:    filters.Encode(),
	}, nil
}

func (s *CatalogService) Product(ctx context.Context, id string) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}
