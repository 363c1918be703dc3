package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/storefront/internal/domain/cart"
)

// PostgresCartStore implements cart.Store on PostgreSQL. Every mutation is
// a single atomic statement, so concurrent mutations for the same entry
// serialize at the row level instead of racing read-modify-write cycles.
type PostgresCartStore struct {
	db *sql.DB
}

func NewPostgresCartStore(db *sql.DB) *PostgresCartStore {
	return &PostgresCartStore{db: db}
}

func (s *PostgresCartStore) Get(ctx context.Context, userID string) ([]cart.LineEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	entries := make([]cart.LineEntry, 0)
	for rows.Next() {
		var e cart.LineEntry
		if err := rows.Scan(&e.ProductID, &e.Quantity); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresCartStore) AddItem(ctx context.Context, userID, productID string, qty int) error {
	// Atomic upsert: the increment happens inside the statement, never in
	// application code.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, product_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, qty)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (s *PostgresCartStore) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	var result sql.Result
	var err error
	if qty <= 0 {
		result, err = s.db.ExecContext(ctx,
			`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
			userID, productID)
	} else {
		result, err = s.db.ExecContext(ctx,
			`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`,
			userID, productID, qty)
	}
	if err != nil {
		return fmt.Errorf("failed to set quantity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return cart.ErrNotFound
	}
	return nil
}

func (s *PostgresCartStore) RemoveItem(ctx context.Context, userID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *PostgresCartStore) Clear(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
