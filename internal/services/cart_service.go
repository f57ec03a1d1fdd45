package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"partsstore/internal/cart"
	"partsstore/internal/domain"
	applog "partsstore/internal/log"
	"partsstore/internal/metrics"
	"partsstore/internal/pricing"
)

// ErrNotAvailable is returned when the principal may not use a store kind.
var ErrNotAvailable = errors.New("not available for this session")

// CartService runs cart and quote operations for a session. Each call opens
// the owner's store, applies one mutation and saves it while holding the
// owner's lock.
type CartService struct {
	Slots cart.Slots
	Prods ProductSource
	locks keyedMutex
}

func NewCartService(slots cart.Slots, prods ProductSource) *CartService {
	return &CartService{Slots: slots, Prods: prods}
}

// Owner keys stores by user once signed in and by session before that.
func Owner(sid string, p domain.Principal) string {
	if p.Authenticated && p.UserID != "" {
		return "u:" + p.UserID
	}
	return "s:" + sid
}

// CartView is a store's lines and money. Totals assume delivery and no
// discount code until checkout says otherwise.
type CartView struct {
	Kind      string          `json:"kind"`
	Items     []cart.Item     `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Totals    pricing.Totals  `json:"totals"`
}

func viewOf(st *cart.Store) CartView {
	sub := st.Subtotal()
	return CartView{
		Kind:      st.Name(),
		Items:     st.Items(),
		ItemCount: st.ItemCount(),
		Subtotal:  sub,
		Totals:    pricing.ComputeTotals(sub, nil, true),
	}
}

// Reprice recomputes v.Totals for a fulfillment method and optional
// discount code.
func (v CartView) Reprice(fulfillment, code string) (CartView, error) {
	t, err := TotalsFor(v.Subtotal, fulfillment, code)
	if err != nil {
		return CartView{}, err
	}
	v.Totals = t
	return v, nil
}

// withStore runs fn on the owner's store with the owner lock held.
func (s *CartService) withStore(ctx context.Context, kind cart.Kind, sid string, p domain.Principal, fn func(*cart.Store) error) error {
	if !kind.Available(p) {
		return ErrNotAvailable
	}
	unlock := s.locks.Lock(Owner(sid, p))
	defer unlock()
	return fn(s.open(ctx, kind.Name, Owner(sid, p)))
}

func (s *CartService) open(ctx context.Context, name, owner string) *cart.Store {
	st := cart.Open(ctx, name, s.Slots.For(owner), applog.L())
	if st.WasReset() {
		metrics.StoreResets.WithLabelValues(name).Inc()
	}
	return st
}

func (s *CartService) mutate(ctx context.Context, kind cart.Kind, sid string, p domain.Principal, op string, fn func(*cart.Store) error) (CartView, error) {
	var v CartView
	err := s.withStore(ctx, kind, sid, p, func(st *cart.Store) error {
		err := fn(st)
		v = viewOf(st)
		if err != nil {
			return err
		}
		metrics.StoreMutations.WithLabelValues(kind.Name, op).Inc()
		return nil
	})
	return v, err
}

func (s *CartService) View(ctx context.Context, kind cart.Kind, sid string, p domain.Principal) (CartView, error) {
	var v CartView
	err := s.withStore(ctx, kind, sid, p, func(st *cart.Store) error {
		v = viewOf(st)
		return nil
	})
	return v, err
}

// Add prices the product for the principal's role and adds one unit. The
// price is locked into the line the first time the product is added.
func (s *CartService) Add(ctx context.Context, kind cart.Kind, sid string, p domain.Principal, productID string) (CartView, error) {
	if !kind.Available(p) {
		return CartView{}, ErrNotAvailable
	}
	prod, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	q, err := pricing.QuoteFor(prod, p.Role)
	if err != nil {
		return CartView{}, err
	}
	return s.mutate(ctx, kind, sid, p, "add", func(st *cart.Store) error {
		return st.Add(ctx, cart.NewItem{
			ProductID: prod.ID,
			Name:      prod.Name,
			Price:     q.Display,
			Image:     prod.PrimaryImage(),
		})
	})
}

func (s *CartService) Remove(ctx context.Context, kind cart.Kind, sid string, p domain.Principal, productID string) (CartView, error) {
	return s.mutate(ctx, kind, sid, p, "remove", func(st *cart.Store) error {
		return st.Remove(ctx, productID)
	})
}

func (s *CartService) SetQuantity(ctx context.Context, kind cart.Kind, sid string, p domain.Principal, productID string, qty int) (CartView, error) {
	return s.mutate(ctx, kind, sid, p, "set_quantity", func(st *cart.Store) error {
		return st.SetQuantity(ctx, productID, qty)
	})
}

func (s *CartService) Clear(ctx context.Context, kind cart.Kind, sid string, p domain.Principal) (CartView, error) {
	return s.mutate(ctx, kind, sid, p, "clear", func(st *cart.Store) error {
		return st.Clear(ctx)
	})
}

// Forget drops every store kept for the anonymous session sid.
func (s *CartService) Forget(ctx context.Context, sid string) error {
	owner := Owner(sid, domain.Anonymous())
	unlock := s.locks.Lock(owner)
	defer unlock()
	if err := s.Slots.Delete(ctx, owner); err != nil {
		return fmt.Errorf("forget %s: %w", owner, err)
	}
	return nil
}

// AdoptQuote moves the quote list built before login into the user's quote
// list. Lines keep the price they were added at.
func (s *CartService) AdoptQuote(ctx context.Context, sid string, p domain.Principal) error {
	if !p.Authenticated {
		return nil
	}
	from, to := Owner(sid, domain.Anonymous()), Owner(sid, p)
	if from == to {
		return nil
	}
	unlockFrom := s.locks.Lock(from)
	defer unlockFrom()
	anon := s.open(ctx, cart.QuoteKind.Name, from)
	if anon.Len() == 0 {
		return nil
	}

	unlockTo := s.locks.Lock(to)
	defer unlockTo()
	mine := s.open(ctx, cart.QuoteKind.Name, to)
	if err := mine.Absorb(ctx, anon.Items()); err != nil {
		return fmt.Errorf("adopt quote: %w", err)
	}
	if err := anon.Clear(ctx); err != nil {
		return fmt.Errorf("adopt quote: %w", err)
	}
	metrics.StoreMutations.WithLabelValues(cart.QuoteKind.Name, "adopt").Inc()
	return nil
}
