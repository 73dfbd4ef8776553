package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bayramdkmn/ecommerce-api/internal/domain"
)

type PostgresCartRepository struct {
	store *Store
}

func NewCartRepository(store *Store) *PostgresCartRepository {
	return &PostgresCartRepository{store: store}
}

// GetOrCreate loads the user's cart with its items, creating an empty cart
// on first access. A cart is never a precondition for any cart operation.
func (r *PostgresCartRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	query := `INSERT INTO carts (user_id, created_at, updated_at)
	          VALUES ($1, NOW(), NOW())
	          ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
	          RETURNING id, user_id, created_at, updated_at`

	cart := &domain.Cart{}
	err := r.store.db.QueryRowContext(ctx, query, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	rows, err := r.store.db.QueryContext(ctx,
		`SELECT product_id, quantity, added_at FROM cart_items WHERE cart_id = $1 ORDER BY added_at, product_id`,
		cart.ID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item row: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return cart, nil
}

// AddItem merges the quantity into an existing line for the product, or
// creates the line. The unique (cart_id, product_id) constraint guarantees
// at most one line per product.
func (r *PostgresCartRepository) AddItem(ctx context.Context, cartID, productID int64, quantity int) error {
	query := `INSERT INTO cart_items (cart_id, product_id, quantity, added_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (cart_id, product_id)
	          DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	if _, err := r.store.db.ExecContext(ctx, query, cartID, productID, quantity); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// RemoveItem deletes the line for the product. Removing an absent line is
// a no-op, not an error.
func (r *PostgresCartRepository) RemoveItem(ctx context.Context, cartID, productID int64) error {
	_, err := r.store.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// DecreaseItem subtracts decrement from the line's quantity, deleting the
// line when the quantity would reach zero or below. A quantity of zero is
// never persisted.
func (r *PostgresCartRepository) DecreaseItem(ctx context.Context, cartID, productID int64, decrement int) error {
	return r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		var quantity int
		err := tx.QueryRowContext(ctx,
			`SELECT quantity FROM cart_items WHERE cart_id = $1 AND product_id = $2 FOR UPDATE`,
			cartID, productID).Scan(&quantity)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCartItemNotFound
		}
		if err != nil {
			return fmt.Errorf("query cart item: %w", err)
		}

		if quantity > decrement {
			_, err = tx.ExecContext(ctx,
				`UPDATE cart_items SET quantity = quantity - $3 WHERE cart_id = $1 AND product_id = $2`,
				cartID, productID, decrement)
		} else {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
				cartID, productID)
		}
		if err != nil {
			return fmt.Errorf("decrease cart item: %w", err)
		}
		return nil
	})
}

func (r *PostgresCartRepository) Clear(ctx context.Context, cartID int64) error {
	if _, err := r.store.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
