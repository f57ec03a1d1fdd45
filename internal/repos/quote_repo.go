package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type QuoteRepo struct{ db *sqlx.DB }

func NewQuoteRepo(db *sqlx.DB) *QuoteRepo { return &QuoteRepo{db: db} }

// QuoteRow is a stored quote request. ItemsJSON is the quote list as it was
// when the request was submitted.
type QuoteRow struct {
	ID        string          `db:"id" json:"id"`
	SessionID string          `db:"session_id" json:"-"`
	UserID    string          `db:"user_id" json:"userId,omitempty"`
	Name      string          `db:"name" json:"name"`
	Email     string          `db:"email" json:"email"`
	Phone     string          `db:"phone" json:"phone,omitempty"`
	Company   string          `db:"company" json:"company,omitempty"`
	Message   string          `db:"message" json:"message,omitempty"`
	ItemsJSON string          `db:"items_json" json:"-"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
	Status    string          `db:"status" json:"status"`
	CreatedAt string          `db:"created_at" json:"createdAt"`
}

func (r *QuoteRepo) Create(ctx context.Context, q QuoteRow) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO quote_requests
	    (id, session_id, user_id, name, email, phone, company, message, items_json, subtotal, status, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'NEW', CURRENT_TIMESTAMP)
	`, q.ID, q.SessionID, q.UserID, q.Name, q.Email, q.Phone, q.Company, q.Message, q.ItemsJSON, q.Subtotal.String())
	return err
}

func (r *QuoteRepo) Get(ctx context.Context, id string) (QuoteRow, error) {
	var q QuoteRow
	err := r.db.GetContext(ctx, &q, `SELECT `+quoteCols+` FROM quote_requests WHERE id = ?`, id)
	if err != nil {
		return QuoteRow{}, notFound(err)
	}
	return q, nil
}

func (r *QuoteRepo) ListLatest(ctx context.Context, limit int) ([]QuoteRow, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []QuoteRow{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+quoteCols+`
		FROM quote_requests
		ORDER BY datetime(created_at) DESC, rowid DESC
		LIMIT ?`, limit)
	return out, err
}

const quoteCols = `id, COALESCE(session_id,'') AS session_id, COALESCE(user_id,'') AS user_id,
	name, email, COALESCE(phone,'') AS phone, COALESCE(company,'') AS company,
	COALESCE(message,'') AS message, items_json, subtotal, status, created_at`
