package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"partsstore/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT
    id,
    name,
    created_at,
    COALESCE(updated_at,'') AS updated_at
  FROM categories
  ORDER BY name
`)
	return out, err
}
