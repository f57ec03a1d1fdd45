package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"partsstore/internal/cart"
	"partsstore/internal/domain"
	"partsstore/internal/metrics"
	"partsstore/internal/repos"
	"partsstore/internal/validate"
)

var ErrQuoteEmpty = errors.New("quote list is empty")

// QuoteRequest is the contact part of a quote submission.
type QuoteRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
}

func (r QuoteRequest) normalize() (QuoteRequest, error) {
	var ok bool
	if r.Name, ok = validate.Name(r.Name); !ok {
		return r, domain.NewInvalidArgument("name", "required, at most 60 characters", r.Name)
	}
	if r.Email, ok = validate.Email(r.Email); !ok {
		return r, domain.NewInvalidArgument("email", "not a valid address", r.Email)
	}
	if r.Phone, ok = validate.Phone(r.Phone); !ok {
		return r, domain.NewInvalidArgument("phone", "not a phone number", r.Phone)
	}
	if r.Company, ok = validate.Text(r.Company, 100); !ok {
		return r, domain.NewInvalidArgument("company", "too long", len(r.Company))
	}
	if r.Message, ok = validate.Text(r.Message, 2000); !ok {
		return r, domain.NewInvalidArgument("message", "too long", len(r.Message))
	}
	return r, nil
}

type QuoteService struct {
	Carts  *CartService
	Quotes *repos.QuoteRepo
}

func NewQuoteService(carts *CartService, quotes *repos.QuoteRepo) *QuoteService {
	return &QuoteService{Carts: carts, Quotes: quotes}
}

// Submit stores the principal's quote list as a quote request and empties
// the list.
func (s *QuoteService) Submit(ctx context.Context, sid string, p domain.Principal, req QuoteRequest) (repos.QuoteRow, error) {
	req, err := req.normalize()
	if err != nil {
		return repos.QuoteRow{}, err
	}
	var row repos.QuoteRow
	err = s.Carts.withStore(ctx, cart.QuoteKind, sid, p, func(st *cart.Store) error {
		items := st.Items()
		if len(items) == 0 {
			return ErrQuoteEmpty
		}
		b, err := json.Marshal(items)
		if err != nil {
			return err
		}
		q := repos.QuoteRow{
			ID:        uuid.NewString(),
			SessionID: sid,
			UserID:    p.UserID,
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			Company:   req.Company,
			Message:   req.Message,
			ItemsJSON: string(b),
			Subtotal:  cart.Subtotal(items),
			Status:    "NEW",
		}
		if err := s.Quotes.Create(ctx, q); err != nil {
			return err
		}
		row = q
		metrics.QuotesSubmitted.Inc()
		metrics.StoreMutations.WithLabelValues(cart.QuoteKind.Name, "submit").Inc()
		return st.Clear(ctx)
	})
	if err != nil && row.ID == "" {
		return repos.QuoteRow{}, err
	}
	return row, err
}

func (s *QuoteService) List(ctx context.Context, limit int) ([]repos.QuoteRow, error) {
	return s.Quotes.ListLatest(ctx, limit)
}

// Items decodes the quote list stored with a request.
func Items(q repos.QuoteRow) ([]cart.Item, error) {
	var items []cart.Item
	err := json.Unmarshal([]byte(q.ItemsJSON), &items)
	return items, err
}

// Get returns a stored quote request with its decoded items.
func (s *QuoteService) Get(ctx context.Context, id string) (repos.QuoteRow, []cart.Item, error) {
	q, err := s.Quotes.Get(ctx, id)
	if err != nil {
		return repos.QuoteRow{}, nil, err
	}
	items, err := Items(q)
	if err != nil {
		return repos.QuoteRow{}, nil, fmt.Errorf("quote %s items: %w", id, err)
	}
	return q, items, nil
}
