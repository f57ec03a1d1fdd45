package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"partsstore/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// Order statuses an admin may set.
var OrderStatuses = []string{"PLACED", "PAID", "SHIPPED", "DELIVERED", "CANCELED"}

// ---------- Admin list summary ----------
type OrderSummary struct {
	ID            string          `db:"id" json:"id"`
	SessionID     string          `db:"session_id" json:"-"`
	UserID        string          `db:"user_id" json:"userId"`
	CustomerName  string          `db:"customer_name" json:"customerName"`
	CustomerEmail string          `db:"customer_email" json:"customerEmail"`
	Total         decimal.Decimal `db:"total" json:"total"`
	Status        string          `db:"status" json:"status"`
	CreatedAt     string          `db:"created_at" json:"createdAt"`
}

// ---------- Order detail ----------
type OrderRow struct {
	ID          string          `db:"id" json:"id"`
	SessionID   string          `db:"session_id" json:"-"`
	UserID      string          `db:"user_id" json:"userId"`
	Fulfillment string          `db:"fulfillment" json:"fulfillment"`
	Customer    string          `db:"customer_name" json:"customerName"`
	Email       string          `db:"customer_email" json:"customerEmail"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount    decimal.Decimal `db:"discount" json:"discount"`
	Code        string          `db:"discount_code" json:"discountCode,omitempty"`
	Tax         decimal.Decimal `db:"tax" json:"tax"`
	Shipping    decimal.Decimal `db:"shipping" json:"shipping"`
	Total       decimal.Decimal `db:"total" json:"total"`
	Status      string          `db:"status" json:"status"`
	CreatedAt   string          `db:"created_at" json:"createdAt"`
}

type OrderItemRow struct {
	ProductID string          `db:"product_id" json:"productId"`
	Name      string          `db:"name" json:"name"`
	Qty       int             `db:"qty" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

// NewOrder is everything Place writes.
type NewOrder struct {
	ID          string
	SessionID   string
	UserID      string
	Fulfillment string
	Name        string
	Email       string
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	Code        string
	Tax         decimal.Decimal
	Shipping    decimal.Decimal
	Total       decimal.Decimal
	Items       []OrderItemRow
}

// Place decrements stock for every line and writes the order in a single
// transaction. An *InsufficientStockError rolls the whole order back.
func (r *OrderRepo) Place(ctx context.Context, o NewOrder) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range o.Items {
		if err := decrement(ctx, tx, it.ProductID, it.Qty); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, session_id, user_id, fulfillment, customer_name, customer_email,
	     subtotal, discount, discount_code, tax, shipping, total, status, created_at)
	  VALUES
	    (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'PLACED', CURRENT_TIMESTAMP)
	`, o.ID, o.SessionID, o.UserID, o.Fulfillment, o.Name, o.Email,
		o.Subtotal.String(), o.Discount.String(), o.Code, o.Tax.String(), o.Shipping.String(),
		o.Total.String()); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(order_id, product_id, name, qty, price)
		  VALUES(?, ?, ?, ?, ?)
		`, o.ID, it.ProductID, it.Name, it.Qty, it.Price.String()); err != nil {
			return fmt.Errorf("insert order item %s: %w", it.ProductID, err)
		}
	}
	return tx.Commit()
}

// ---------- Used by order pages/admin ----------

func (r *OrderRepo) Get(ctx context.Context, orderID string) (OrderRow, []OrderItemRow, error) {
	var o OrderRow
	if err := r.db.GetContext(ctx, &o, `
		SELECT id, COALESCE(session_id,'') AS session_id, COALESCE(user_id,'') AS user_id,
		       COALESCE(fulfillment,'') AS fulfillment, COALESCE(customer_name,'') AS customer_name,
		       COALESCE(customer_email,'') AS customer_email, subtotal, discount,
		       COALESCE(discount_code,'') AS discount_code, tax, shipping, total, status, created_at
		FROM orders
		WHERE id = ?
	`, orderID); err != nil {
		return OrderRow{}, nil, notFound(err)
	}

	items := []OrderItemRow{}
	if err := r.db.SelectContext(ctx, &items, `
		SELECT product_id, name, qty, price
		FROM order_items
		WHERE order_id = ?
		ORDER BY rowid
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	return o, items, nil
}

const summaryCols = `id, COALESCE(session_id,'') AS session_id, COALESCE(user_id,'') AS user_id,
		       COALESCE(customer_name,'') AS customer_name, COALESCE(customer_email,'') AS customer_email,
		       total, status, created_at`

func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []OrderSummary{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+summaryCols+`
		FROM orders
		ORDER BY datetime(created_at) DESC, rowid DESC
		LIMIT ?
	`, limit)
	return out, err
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]OrderSummary, error) {
	out := []OrderSummary{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+summaryCols+`
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC, rowid DESC
	`, userID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	valid := false
	for _, s := range OrderStatuses {
		if s == status {
			valid = true
		}
	}
	if !valid {
		return domain.NewInvalidArgument("status", "unknown order status", status)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

