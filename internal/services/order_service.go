package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"partsstore/internal/cart"
	"partsstore/internal/domain"
	"partsstore/internal/metrics"
	"partsstore/internal/pricing"
	"partsstore/internal/repos"
	"partsstore/internal/validate"
)

var (
	ErrCartEmpty  = errors.New("cart is empty")
	ErrOutOfStock = errors.New("insufficient stock")
)

// CheckoutRequest is what the buyer supplies at checkout. Blank Name and
// Email fall back to the signed-in account.
type CheckoutRequest struct {
	Fulfillment  string
	Name         string
	Email        string
	DiscountCode string
}

// TotalsFor prices subtotal for a fulfillment method and an optional
// discount code.
func TotalsFor(subtotal decimal.Decimal, fulfillment, code string) (pricing.Totals, error) {
	ful, ok := validate.Fulfillment(fulfillment)
	if !ok {
		return pricing.Totals{}, domain.NewInvalidArgument("fulfillment", "must be delivery or pickup", fulfillment)
	}
	var dc *pricing.DiscountCode
	if strings.TrimSpace(code) != "" {
		c, err := pricing.LookupDiscountCode(code)
		if err != nil {
			return pricing.Totals{}, err
		}
		dc = &c
	}
	return pricing.ComputeTotals(subtotal, dc, ful == "delivery"), nil
}

type OrderService struct {
	Carts  *CartService
	Orders *repos.OrderRepo
}

func NewOrderService(carts *CartService, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Carts: carts, Orders: orders}
}

// Checkout turns the principal's cart into an order. The totals are computed
// from the prices locked into the cart lines; the catalog is not re-priced.
// Stock is checked and decremented in the same transaction that writes the
// order, and the cart is cleared only after that commits.
func (s *OrderService) Checkout(ctx context.Context, sid string, p domain.Principal, req CheckoutRequest) (string, pricing.Totals, error) {
	ful, ok := validate.Fulfillment(req.Fulfillment)
	if !ok {
		return "", pricing.Totals{}, domain.NewInvalidArgument("fulfillment", "must be delivery or pickup", req.Fulfillment)
	}
	if req.Name == "" {
		req.Name = p.Name
	}
	if req.Email == "" {
		req.Email = p.Email
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return "", pricing.Totals{}, domain.NewInvalidArgument("name", "required, at most 60 characters", req.Name)
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return "", pricing.Totals{}, domain.NewInvalidArgument("email", "not a valid address", req.Email)
	}

	var orderID string
	var totals pricing.Totals
	err := s.Carts.withStore(ctx, cart.CartKind, sid, p, func(st *cart.Store) error {
		items := st.Items()
		if len(items) == 0 {
			return ErrCartEmpty
		}
		t, err := TotalsFor(cart.Subtotal(items), ful, req.DiscountCode)
		if err != nil {
			return err
		}
		order := repos.NewOrder{
			ID:          uuid.NewString(),
			SessionID:   sid,
			UserID:      p.UserID,
			Fulfillment: ful,
			Name:        name,
			Email:       email,
			Subtotal:    t.Subtotal,
			Discount:    t.Discount,
			Code:        t.DiscountCode,
			Tax:         t.Tax,
			Shipping:    t.Shipping,
			Total:       t.Total,
		}
		for _, it := range items {
			order.Items = append(order.Items, repos.OrderItemRow{
				ProductID: it.ProductID, Name: it.Name, Qty: it.Quantity, Price: it.Price,
			})
		}
		if err := s.Orders.Place(ctx, order); err != nil {
			var ise *repos.InsufficientStockError
			if errors.As(err, &ise) {
				return fmt.Errorf("%w: %s", ErrOutOfStock, ise.ProductID)
			}
			return err
		}
		orderID, totals = order.ID, t
		metrics.OrdersPlaced.Inc()
		if err := st.Clear(ctx); err != nil {
			return fmt.Errorf("order %s placed but cart not cleared: %w", order.ID, err)
		}
		metrics.StoreMutations.WithLabelValues(cart.CartKind.Name, "checkout").Inc()
		return nil
	})
	if err != nil && orderID == "" {
		return "", pricing.Totals{}, err
	}
	return orderID, totals, err
}

// History lists the principal's orders.
func (s *OrderService) History(ctx context.Context, p domain.Principal) ([]repos.OrderSummary, error) {
	if !p.Authenticated {
		return nil, ErrNotAvailable
	}
	return s.Orders.ListByUser(ctx, p.UserID)
}

// Get returns an order its owner or an admin may see. Other callers get
// domain.ErrNotFound so order ids cannot be probed.
func (s *OrderService) Get(ctx context.Context, p domain.Principal, id string) (repos.OrderRow, []repos.OrderItemRow, error) {
	o, items, err := s.Orders.Get(ctx, id)
	if err != nil {
		return repos.OrderRow{}, nil, err
	}
	if !p.IsAdmin() && (!p.Authenticated || o.UserID != p.UserID) {
		return repos.OrderRow{}, nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return o, items, nil
}
