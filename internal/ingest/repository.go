package ingest

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists durable idempotency records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new ingest repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Reserve inserts the dedup key, returning true when this call owned the
// insert. A conflicting key means the event was seen before.
func (r *Repository) Reserve(ctx context.Context, dedupKey string, tenantID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_records (dedup_key, tenant_id)
		VALUES ($1, $2)
		ON CONFLICT (dedup_key) DO NOTHING
	`, dedupKey, tenantID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
