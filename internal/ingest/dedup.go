package ingest

import (
	"context"
	"time"

	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RecordStore is the durable idempotency record surface. Satisfied by *Repository.
type RecordStore interface {
	Reserve(ctx context.Context, dedupKey string, tenantID uuid.UUID) (bool, error)
}

// Guard is the idempotency guard. The record is written before the event is
// processed, so a crash mid-processing reads as already-applied on redelivery
// rather than as a double apply.
//
// When a redis client is configured, a SET NX reservation with TTL answers
// most duplicate checks without touching Postgres. The Postgres record is the
// source of truth; redis errors degrade to the durable path.
type Guard struct {
	redis *redis.Client
	store RecordStore
	ttl   time.Duration
	log   *logger.Logger
}

// NewGuard creates an idempotency guard. redisClient may be nil.
func NewGuard(redisClient *redis.Client, store RecordStore, ttl time.Duration, log *logger.Logger) *Guard {
	return &Guard{redis: redisClient, store: store, ttl: ttl, log: log}
}

// CheckAndReserve reserves the dedup key. Returns true when the event is
// fresh and this caller owns processing it, false when it is a duplicate.
func (g *Guard) CheckAndReserve(ctx context.Context, dedupKey string, tenantID uuid.UUID) (bool, error) {
	if g.redis != nil {
		reserved, err := g.redis.SetNX(ctx, "dedup:"+dedupKey, "1", g.ttl).Result()
		if err != nil {
			g.log.Warn("dedup fast path unavailable, falling back to durable record",
				"error", err, "dedupKey", dedupKey)
		} else if !reserved {
			return false, nil
		}
	}

	return g.store.Reserve(ctx, dedupKey, tenantID)
}
