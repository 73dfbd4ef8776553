package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bayramdkmn/ecommerce-api/internal/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrRatingNotFound   = errors.New("rating not found")
	ErrTokenNotFound    = errors.New("token not found")

	// ErrOrderStatusChanged reports a lost status transition race: the
	// order's status was no longer the expected one at write time.
	ErrOrderStatusChanged = errors.New("order status changed concurrently")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// ProductRepository defines catalog read operations.
// Consumers define this interface, not the postgres implementation.
type ProductRepository interface {
	ListActive(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// RatingRepository mutates product ratings. Every mutation recomputes the
// product's rating aggregate in the same transaction.
type RatingRepository interface {
	Rate(ctx context.Context, productID, userID int64, stars int) error
	DeleteRating(ctx context.Context, productID, userID int64) error
}

// CartRepository defines cart persistence. A cart is created lazily on
// first access and is never deleted, only emptied.
type CartRepository interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID int64) error
	DecreaseItem(ctx context.Context, cartID, productID int64, decrement int) error
	Clear(ctx context.Context, cartID int64) error
}

// OrderStore is the persistence surface of the checkout transaction and of
// order reads and status updates. The tx-taking methods compose inside a
// single WithinTx call; the checkout algorithm lives in the service layer.
type OrderStore interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	LockCartLines(ctx context.Context, tx *sql.Tx, userID int64) ([]domain.PricedCartLine, error)
	InsertOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) error
	InsertOrderItems(ctx context.Context, tx *sql.Tx, orderID int64, items []domain.OrderItem) error
	DeleteCartLines(ctx context.Context, tx *sql.Tx, userID int64) error
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	ListOrdersByUserAndStatus(ctx context.Context, userID int64, status domain.OrderStatus) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, from, to domain.OrderStatus) error
}

// TokenRepository resolves an already-issued API token to an identity.
type TokenRepository interface {
	Resolve(ctx context.Context, key string) (domain.Identity, error)
}
