package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"partsstore/internal/domain"
)

type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// StockRow is one line of the admin stock listing.
type StockRow struct {
	ProductID string `db:"id" json:"productId"`
	Name      string `db:"name" json:"name"`
	Stock     int    `db:"stock" json:"stock"`
}

func (r *InventoryRepo) ListAll(ctx context.Context) ([]StockRow, error) {
	rows := []StockRow{}
	err := r.db.SelectContext(ctx, &rows, `SELECT id, name, stock FROM products ORDER BY name`)
	return rows, err
}

// Qty returns current stock for an active product. domain.ErrNotFound when
// the product does not exist.
func (r *InventoryRepo) Qty(ctx context.Context, productID string) (int, error) {
	var qty int
	err := r.db.GetContext(ctx, &qty, `SELECT stock FROM products WHERE id = ? AND active = 1`, productID)
	if err != nil {
		return 0, notFound(err)
	}
	return qty, nil
}

// SetStock overwrites the stock level of a product.
func (r *InventoryRepo) SetStock(ctx context.Context, productID string, qty int) error {
	if qty < 0 {
		return domain.NewInvalidArgument("stock", "must be non-negative", qty)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE products SET stock = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, qty, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	return nil
}

// decrement subtracts by units inside tx if enough stock exists.
func decrement(ctx context.Context, tx *sqlx.Tx, productID string, by int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?, popularity = popularity + ?
		WHERE id = ? AND stock >= ?
	`, by, by, productID, by)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &InsufficientStockError{ProductID: productID, Want: by}
	}
	return nil
}

// InsufficientStockError reports a line that cannot be fulfilled.
type InsufficientStockError struct {
	ProductID string
	Want      int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (need %d)", e.ProductID, e.Want)
}
