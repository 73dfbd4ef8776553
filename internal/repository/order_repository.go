package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bayramdkmn/ecommerce-api/internal/domain"
	"github.com/lib/pq"
)

type PostgresOrderStore struct {
	store *Store
}

func NewOrderStore(store *Store) *PostgresOrderStore {
	return &PostgresOrderStore{store: store}
}

func (r *PostgresOrderStore) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return r.store.WithinTx(ctx, fn)
}

// LockCartLines reads the user's cart lines joined with their products in
// one consistent view, locking the line rows so two concurrent checkouts
// for the same cart serialize: the second one observes an empty cart.
func (r *PostgresOrderStore) LockCartLines(ctx context.Context, tx *sql.Tx, userID int64) ([]domain.PricedCartLine, error) {
	query := `SELECT ci.product_id, p.name, ci.quantity, p.price
	          FROM cart_items ci
	          JOIN carts c ON c.id = ci.cart_id
	          JOIN products p ON p.id = ci.product_id
	          WHERE c.user_id = $1
	          ORDER BY ci.added_at, ci.product_id
	          FOR UPDATE OF ci`

	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.PricedCartLine
	for rows.Next() {
		var line domain.PricedCartLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan cart line row: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

func (r *PostgresOrderStore) InsertOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	query := `INSERT INTO orders (user_id, total_price, status, created_at)
	          VALUES ($1, $2, $3, NOW())
	          RETURNING id, created_at`

	err := tx.QueryRowContext(ctx, query, order.UserID, order.TotalPrice, order.Status).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *PostgresOrderStore) InsertOrderItems(ctx context.Context, tx *sql.Tx, orderID int64, items []domain.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	for i := range items {
		items[i].OrderID = orderID
		err := tx.QueryRowContext(ctx, query,
			orderID,
			items[i].ProductID,
			items[i].ProductName,
			items[i].Quantity,
			items[i].Price,
		).Scan(&items[i].ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return ErrProductNotFound
			}
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *PostgresOrderStore) DeleteCartLines(ctx context.Context, tx *sql.Tx, userID int64) error {
	query := `DELETE FROM cart_items ci USING carts c
	          WHERE ci.cart_id = c.id AND c.user_id = $1`

	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete cart lines: %w", err)
	}
	return nil
}

func (r *PostgresOrderStore) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT id, user_id, total_price, status, created_at FROM orders WHERE id = $1`

	order := &domain.Order{}
	err := r.store.db.QueryRowContext(ctx, query, id).
		Scan(&order.ID, &order.UserID, &order.TotalPrice, &order.Status, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	items, err := r.orderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *PostgresOrderStore) ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return r.listOrders(ctx,
		`SELECT id, user_id, total_price, status, created_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
}

func (r *PostgresOrderStore) ListOrdersByUserAndStatus(ctx context.Context, userID int64, status domain.OrderStatus) ([]*domain.Order, error) {
	return r.listOrders(ctx,
		`SELECT id, user_id, total_price, status, created_at FROM orders WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`,
		userID, status)
}

func (r *PostgresOrderStore) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	return r.listOrders(ctx,
		`SELECT id, user_id, total_price, status, created_at FROM orders ORDER BY created_at DESC`)
}

func (r *PostgresOrderStore) listOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.TotalPrice, &order.Status, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		items, err := r.orderItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

func (r *PostgresOrderStore) orderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

// UpdateOrderStatus is the only mutation an order admits after creation.
// The write is a compare-and-swap on the expected current status, so two
// racing transitions cannot both move the same order.
func (r *PostgresOrderStore) UpdateOrderStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`, orderID, from, to)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var current domain.OrderStatus
	err = r.store.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("read order status: %w", err)
	}
	return ErrOrderStatusChanged
}
