package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"partsstore/internal/cart"
)

// SlotRepo persists cart and quote payloads in the slots table.
type SlotRepo struct{ db *sqlx.DB }

func NewSlotRepo(db *sqlx.DB) *SlotRepo { return &SlotRepo{db: db} }

func (r *SlotRepo) For(owner string) cart.Slot { return &sqlSlot{db: r.db, owner: owner} }

// Delete drops every slot held by owner.
func (r *SlotRepo) Delete(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE owner = ?`, owner)
	return err
}

type sqlSlot struct {
	db    *sqlx.DB
	owner string
}

func (s *sqlSlot) Load(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM slots WHERE owner = ? AND name = ?`, s.owner, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return payload, err
}

func (s *sqlSlot) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots(owner, name, payload, updated_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(owner, name) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP
	`, s.owner, name, data)
	return err
}
