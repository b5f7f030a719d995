// Package idempotency de-duplicates consumed event IDs.
//
// Primary backend: Redis SETNX with TTL (env REDIS_DSN).
// Fallback: Postgres INSERT ... ON CONFLICT on the processed_events table.
// If neither is available, an in-memory store is used (development only).
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const keyPrefix = "qa:event:"

// Store checks whether an event has already been processed and marks it.
type Store interface {
	// Check returns true if eventID was already processed.
	// If not seen, it atomically marks it as processed.
	Check(ctx context.Context, eventID string) (duplicate bool, err error)
	// Release forgets eventID so a failed delivery can be retried.
	Release(ctx context.Context, eventID string) error
}

// NewStore creates the best available store: Redis > Postgres > in-memory.
// When isProd is true, the in-memory fallback is refused.
func NewStore(redisDSN string, pool *pgxpool.Pool, ttl time.Duration, isProd bool) (Store, error) {
	if redisDSN != "" {
		return newRedisStore(redisDSN, ttl), nil
	}
	if pool != nil {
		return newPostgresStore(pool), nil
	}
	if isProd {
		return nil, errors.New("production requires REDIS_DSN or DATABASE_URL for idempotency; in-memory store is not allowed")
	}
	return NewMemoryStore(), nil
}
