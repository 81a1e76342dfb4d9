package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshkart/storefront/internal/domain/cart"
)

// ClientStateStore persists per-user opaque state blobs (cart, favourites)
// in the client_state table. Each user gets an isolated scope; payloads are
// written whole, the way the web client wrote local storage values.
type ClientStateStore struct {
	pool *pgxpool.Pool
}

// NewClientStateStore returns a ClientStateStore that uses the given pool.
func NewClientStateStore(pool *pgxpool.Pool) *ClientStateStore {
	return &ClientStateStore{pool: pool}
}

// Scope returns the storage view for a single user.
func (s *ClientStateStore) Scope(userID string) cart.Storage {
	return &scopedState{pool: s.pool, userID: userID}
}

type scopedState struct {
	pool   *pgxpool.Pool
	userID string
}

var _ cart.Storage = (*scopedState)(nil)

func (s *scopedState) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM client_state WHERE user_id = $1 AND key = $2`,
		s.userID, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting client state %q: %w", key, err)
	}
	return payload, nil
}

func (s *scopedState) Set(ctx context.Context, key string, payload []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO client_state (user_id, key, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, key) DO UPDATE
			SET payload = EXCLUDED.payload, updated_at = now()`,
		s.userID, key, payload)
	if err != nil {
		return fmt.Errorf("setting client state %q: %w", key, err)
	}
	return nil
}

func (s *scopedState) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM client_state WHERE user_id = $1 AND key = $2`,
		s.userID, key)
	if err != nil {
		return fmt.Errorf("deleting client state %q: %w", key, err)
	}
	return nil
}
