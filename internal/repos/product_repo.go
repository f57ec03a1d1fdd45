package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"partsstore/internal/catalog"
	"partsstore/internal/domain"
	applog "partsstore/internal/log"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// productRow is a products row as stored. Rows are passed through
// catalog.Normalize on the way out so bad data gets the same defaults as an
// import would.
type productRow struct {
	ID                 string         `db:"id"`
	Name               string         `db:"name"`
	Brand              string         `db:"brand"`
	Category           string         `db:"category"`
	Description        sql.NullString `db:"description"`
	Condition          string         `db:"condition"`
	Price              string         `db:"price"`
	OriginalPrice      sql.NullString `db:"original_price"`
	Stock              int            `db:"stock"`
	ImagesJSON         sql.NullString `db:"images_json"`
	TagsJSON           sql.NullString `db:"tags_json"`
	DiscountPercentage int            `db:"discount_percentage"`
	Popularity         int            `db:"popularity"`
	CreatedAt          sql.NullString `db:"created_at"`
}

const productCols = `
    p.id, p.name, p.brand, c.name AS category, p.description, p.condition, p.price,
    p.original_price, p.stock, p.images_json, p.tags_json, p.discount_percentage,
    p.popularity, p.created_at
  FROM products p
  JOIN categories c ON c.id = p.category_id`

func (r productRow) product() (domain.Product, error) {
	raw := catalog.RawProduct{
		ID:                 r.ID,
		Name:               r.Name,
		Brand:              r.Brand,
		Category:           r.Category,
		Description:        r.Description.String,
		Condition:          r.Condition,
		Stock:              &r.Stock,
		DiscountPercentage: &r.DiscountPercentage,
		Popularity:         &r.Popularity,
		CreatedAt:          r.CreatedAt.String,
	}
	if d, err := decimal.NewFromString(r.Price); err == nil {
		raw.Price = &d
	}
	if r.OriginalPrice.Valid {
		if d, err := decimal.NewFromString(r.OriginalPrice.String); err == nil {
			raw.OriginalPrice = &d
		}
	}
	if r.ImagesJSON.Valid {
		_ = json.Unmarshal([]byte(r.ImagesJSON.String), &raw.Images)
	}
	if r.TagsJSON.Valid {
		_ = json.Unmarshal([]byte(r.TagsJSON.String), &raw.Tags)
	}
	return catalog.Normalize(raw)
}

// ListActive returns every active product, newest first. Rows that cannot
// be turned into a product are skipped and logged.
func (r *ProductRepo) ListActive(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+productCols+`
  WHERE p.active = 1
  ORDER BY p.created_at DESC, p.rowid DESC`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.product()
		if err != nil {
			applog.L().Warn("skipping malformed product row", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepo) ListByCategory(ctx context.Context, catID string) ([]domain.Product, error) {
	all, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if catalog.Slug(p.Category) == catID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get returns an active product. domain.ErrNotFound when absent.
func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, `SELECT `+productCols+`
  WHERE p.id = ? AND p.active = 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return row.product()
}

// Upsert writes normalised products, creating categories on the way.
func (r *ProductRepo) Upsert(ctx context.Context, products []domain.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range products {
		catID := catalog.Slug(p.Category)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories(id, name) VALUES(?, ?)
			ON CONFLICT(id) DO NOTHING`, catID, p.Category); err != nil {
			return fmt.Errorf("upsert category %s: %w", catID, err)
		}
		images, _ := json.Marshal(p.Images)
		tags, _ := json.Marshal(p.Tags)
		var created any
		if p.CreatedAt != "" {
			created = p.CreatedAt
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products(
			  id, category_id, name, brand, description, condition, price, original_price, stock,
			  images_json, tags_json, discount_percentage, popularity, active, created_at)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,1,COALESCE(?, CURRENT_TIMESTAMP))
			ON CONFLICT(id) DO UPDATE SET
			  category_id=excluded.category_id, name=excluded.name, brand=excluded.brand,
			  description=excluded.description, condition=excluded.condition, price=excluded.price,
			  original_price=excluded.original_price, stock=excluded.stock,
			  images_json=excluded.images_json, tags_json=excluded.tags_json,
			  discount_percentage=excluded.discount_percentage, popularity=excluded.popularity,
			  active=1, updated_at=CURRENT_TIMESTAMP`,
			p.ID, catID, p.Name, p.Brand, p.Description, string(p.Condition), p.Price.String(),
			p.OriginalPrice, p.Stock, string(images), string(tags), p.DiscountPercentage,
			p.Popularity, created); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}
