package services

import (
	"context"
	"errors"

	"partsstore/internal/domain"
	"partsstore/internal/repos"
)

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// CheckAvailability converts qty to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID string) (domain.Availability, error) {
	qty, err := s.Inv.Qty(ctx, productID)
	if err != nil {
		// An unknown product has nothing to sell.
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
		}
		return domain.Availability{}, err
	}

	status := "OUT_OF_STOCK"
	eta := "backorder"
	switch {
	case qty >= 5:
		status, eta = "IN_STOCK", "ships today"
	case qty > 0:
		status, eta = "LOW_STOCK", "ships today"
	}
	return domain.Availability{Status: status, Qty: qty, ETA: eta}, nil
}

func (s *InventoryService) SetStock(ctx context.Context, productID string, qty int) error {
	return s.Inv.SetStock(ctx, productID, qty)
}

func (s *InventoryService) List(ctx context.Context) ([]repos.StockRow, error) {
	return s.Inv.ListAll(ctx)
}
