package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Issue registers a single-use token bound to an order.
func (s *Store) Issue(ctx context.Context, token, orderID string) error {
	query := `
		INSERT INTO checkout_tokens (token, order_id, created_at)
		VALUES ($1, $2, now())
	`

	_, err := s.pool.Exec(ctx, query, token, orderID)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}

	return nil
}

// Consume deletes the token if it exists and is bound to the order. The
// delete doubles as the single-use guarantee: a second consume of the same
// token finds no row and fails closed.
func (s *Store) Consume(ctx context.Context, token, orderID string) error {
	query := `
		DELETE FROM checkout_tokens
		WHERE token = $1 AND order_id = $2
	`

	result, err := s.pool.Exec(ctx, query, token, orderID)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrInvalidToken
	}

	return nil
}
