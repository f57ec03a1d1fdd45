package catalog

import "partsstore/internal/domain"

const DefaultPerPage = 24

type PageInfo struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// Paginate slices one page out of items. A page past the end is empty.
func Paginate(items []domain.Product, page, perPage int) ([]domain.Product, PageInfo) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(items)
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	info := PageInfo{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: perPage,
		HasNextPage:  page < pages,
		HasPrevPage:  page > 1,
	}
	// page is caller input; only multiply once it is known to be in range
	if page > pages {
		return []domain.Product{}, info
	}
	start := (page - 1) * perPage
	end := total
	if perPage < total-start {
		end = start + perPage
	}
	return items[start:end], info
}
