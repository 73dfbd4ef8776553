package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bayramdkmn/ecommerce-api/internal/domain"
)

type PostgresTokenRepository struct {
	store *Store
}

func NewTokenRepository(store *Store) *PostgresTokenRepository {
	return &PostgresTokenRepository{store: store}
}

// Resolve maps an issued token key to the identity it was issued for.
// Token issuance happens outside this service.
func (r *PostgresTokenRepository) Resolve(ctx context.Context, key string) (domain.Identity, error) {
	query := `SELECT u.id, u.is_admin
	          FROM auth_tokens t
	          JOIN users u ON u.id = t.user_id
	          WHERE t.key = $1`

	var identity domain.Identity
	err := r.store.db.QueryRowContext(ctx, query, key).Scan(&identity.UserID, &identity.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, ErrTokenNotFound
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("query token: %w", err)
	}
	return identity, nil
}
