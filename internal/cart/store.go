// Package cart holds the priced item collections behind the shopping cart and
// the quote request list. Both are the same Store under different slot names.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"partsstore/internal/domain"
)

// Item is one line of a store. Price is locked in when the line is created.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is Price * Quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// NewItem is what callers hand to Add: an already priced product.
type NewItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Image     string
}

// Store is one ordered, merge-by-id list of priced lines backed by a Slot.
type Store struct {
	mu    sync.Mutex
	name  string
	slot  Slot
	log   *zap.Logger
	items []Item
	index map[string]int
	reset bool
}

// Open restores the store from slot. Anything unreadable is treated as an
// empty store; Open never fails.
func Open(ctx context.Context, name string, slot Slot, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{name: name, slot: slot, log: logger, index: map[string]int{}}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	b, err := s.slot.Load(ctx, s.name)
	if err != nil {
		s.log.Warn("store load failed; starting empty", zap.String("store", s.name), zap.Error(err))
		s.reset = true
		return
	}
	if len(b) == 0 {
		return
	}
	var raw []Item
	if err := json.Unmarshal(b, &raw); err != nil {
		s.log.Warn("store payload malformed; starting empty", zap.String("store", s.name), zap.Error(err))
		s.reset = true
		return
	}
	dropped := 0
	for _, it := range raw {
		it.ProductID = strings.TrimSpace(it.ProductID)
		if it.ProductID == "" || it.Quantity < 1 || it.Price.IsNegative() {
			dropped++
			continue
		}
		if i, ok := s.index[it.ProductID]; ok {
			s.items[i].Quantity += it.Quantity
			continue
		}
		s.index[it.ProductID] = len(s.items)
		s.items = append(s.items, it)
	}
	if dropped > 0 {
		s.log.Warn("store dropped malformed lines", zap.String("store", s.name), zap.Int("dropped", dropped))
	}
}

func (s *Store) Name() string { return s.name }

// WasReset reports whether Open discarded an unreadable payload.
func (s *Store) WasReset() bool { return s.reset }

// Add inserts the product with quantity 1, or bumps the quantity of an
// existing line by one. An existing line keeps its original price.
func (s *Store) Add(ctx context.Context, in NewItem) error {
	id := strings.TrimSpace(in.ProductID)
	if id == "" {
		return domain.NewInvalidArgument("productId", "cannot be empty", in.ProductID)
	}
	if in.Price.IsNegative() {
		return domain.NewInvalidArgument("price", "must be non-negative", in.Price.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[id]; ok {
		s.items[i].Quantity++
	} else {
		s.index[id] = len(s.items)
		s.items = append(s.items, Item{ProductID: id, Name: in.Name, Price: in.Price, Image: in.Image, Quantity: 1})
	}
	return s.persist(ctx)
}

// Remove deletes the line for productID. Removing an absent id is not an error.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(strings.TrimSpace(productID))
	return s.persist(ctx)
}

// SetQuantity sets an existing line's quantity exactly. qty <= 0 removes the
// line; an absent id with qty > 0 is left alone.
func (s *Store) SetQuantity(ctx context.Context, productID string, qty int) error {
	productID = strings.TrimSpace(productID)
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[productID]
	if !ok {
		return nil
	}
	if qty <= 0 {
		s.removeLocked(productID)
		return s.persist(ctx)
	}
	if s.items[i].Quantity == qty {
		return nil
	}
	s.items[i].Quantity = qty
	return s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.index = map[string]int{}
	return s.persist(ctx)
}

// Absorb merges items into the store. Lines already present gain the incoming
// quantity and keep their own price; new lines keep the incoming price.
func (s *Store) Absorb(ctx context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if i, ok := s.index[it.ProductID]; ok {
			s.items[i].Quantity += it.Quantity
		} else {
			s.index[it.ProductID] = len(s.items)
			s.items = append(s.items, it)
		}
		changed = true
	}
	if !changed {
		return nil
	}
	return s.persist(ctx)
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ItemCount is the sum of all quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Subtotal sums locked price * quantity. It never consults the catalog.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Subtotal(s.items)
}

// Subtotal sums the line totals of items.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (s *Store) removeLocked(productID string) {
	i, ok := s.index[productID]
	if !ok {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, productID)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ProductID] = j
	}
}

func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart: encode %s: %w", s.name, err)
	}
	if err := s.slot.Save(ctx, s.name, b); err != nil {
		return fmt.Errorf("cart: persist %s: %w", s.name, err)
	}
	return nil
}
