package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielavelez12/goupromo/internal/cart"
)

// PostgresStore persists cart snapshots in carts/cart_items, keyed by the
// session slot. Save replaces the whole snapshot in one transaction; there
// is no diffing, the engine always hands over the full item list.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context, slot string) ([]cart.LineItem, error) {
	var cartID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM carts WHERE session_key = $1`, slot).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart row: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT item_number, name, offer_price, quantity, restaurant_name, image_url
FROM cart_items
WHERE cart_id = $1
ORDER BY position`, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	var items []cart.LineItem
	for rows.Next() {
		var it cart.LineItem
		if err := rows.Scan(&it.ItemID, &it.Name, &it.UnitPrice, &it.Quantity, &it.VendorName, &it.ImageURL); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) Save(ctx context.Context, slot string, items []cart.LineItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	total := 0.0
	for _, it := range items {
		total += it.UnitPrice * float64(it.Quantity)
	}

	const upsertCartSQL = `
INSERT INTO carts (id, session_key, total, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (session_key) DO UPDATE
SET total = EXCLUDED.total, updated_at = NOW()
RETURNING id
`
	var cartID string
	if err = tx.QueryRowContext(ctx, upsertCartSQL, uuid.NewString(), slot, total).Scan(&cartID); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("delete old items: %w", err)
	}

	if len(items) > 0 {
		stmt, prepErr := tx.PrepareContext(ctx, `
INSERT INTO cart_items (id, cart_id, position, item_number, name, offer_price, quantity, restaurant_name, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
		if prepErr != nil {
			err = fmt.Errorf("prepare insert: %w", prepErr)
			return err
		}
		defer stmt.Close()

		for i, it := range items {
			if _, err = stmt.ExecContext(ctx, uuid.NewString(), cartID, i,
				it.ItemID, it.Name, it.UnitPrice, it.Quantity, it.VendorName, it.ImageURL); err != nil {
				return fmt.Errorf("insert item %q: %w", it.ItemID, err)
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, slot string) error {
	// cart_items rows go with the cart via ON DELETE CASCADE.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE session_key = $1`, slot); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
