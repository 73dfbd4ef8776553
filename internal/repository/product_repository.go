package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bayramdkmn/ecommerce-api/internal/domain"
	"github.com/lib/pq"
)

type PostgresProductRepository struct {
	store *Store
}

func NewProductRepository(store *Store) *PostgresProductRepository {
	return &PostgresProductRepository{store: store}
}

const productColumns = `id, name, description, price, discount_price, stock, is_active, slug, category_id, rating_average, rating_count, created_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.DiscountPrice,
		&p.Stock,
		&p.IsActive,
		&p.Slug,
		&p.CategoryID,
		&p.RatingAverage,
		&p.RatingCount,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresProductRepository) ListActive(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active ORDER BY id`

	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.store.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return p, nil
}

func (r *PostgresProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	p, err := scanProduct(r.store.db.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by slug: %w", err)
	}
	return p, nil
}

func (r *PostgresProductRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	if len(ids) == 0 {
		return map[int64]*domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.store.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query products by ids: %w", err)
	}
	defer rows.Close()

	products := make(map[int64]*domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *PostgresProductRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT id, name, slug, is_active FROM categories WHERE is_active ORDER BY name`

	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

// Rate upserts the caller's rating and recomputes the product's rating
// aggregate in the same transaction.
func (r *PostgresProductRepository) Rate(ctx context.Context, productID, userID int64, stars int) error {
	return r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO product_ratings (product_id, user_id, stars, created_at, updated_at)
		          VALUES ($1, $2, $3, NOW(), NOW())
		          ON CONFLICT (product_id, user_id)
		          DO UPDATE SET stars = EXCLUDED.stars, updated_at = NOW()`

		if _, err := tx.ExecContext(ctx, query, productID, userID, stars); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return ErrProductNotFound
			}
			return fmt.Errorf("upsert rating: %w", err)
		}

		return recalcProductRating(ctx, tx, productID)
	})
}

func (r *PostgresProductRepository) DeleteRating(ctx context.Context, productID, userID int64) error {
	return r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM product_ratings WHERE product_id = $1 AND user_id = $2`,
			productID, userID)
		if err != nil {
			return fmt.Errorf("delete rating: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return ErrRatingNotFound
		}

		return recalcProductRating(ctx, tx, productID)
	})
}

// recalcProductRating refreshes the derived rating aggregate. Called
// explicitly at the end of every rating mutation so the data flow stays
// traceable, instead of hanging it off a trigger.
func recalcProductRating(ctx context.Context, tx *sql.Tx, productID int64) error {
	query := `UPDATE products SET
	            rating_average = COALESCE((SELECT ROUND(AVG(stars), 2) FROM product_ratings WHERE product_id = $1), 0),
	            rating_count   = (SELECT COUNT(*) FROM product_ratings WHERE product_id = $1)
	          WHERE id = $1`

	if _, err := tx.ExecContext(ctx, query, productID); err != nil {
		return fmt.Errorf("recalculate product rating: %w", err)
	}
	return nil
}
