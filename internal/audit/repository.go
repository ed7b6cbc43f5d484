// Package audit provides the audit trail and usage metering recorder. It only
// observes: nothing here ever mutates business state.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Metric names usage counters.
type Metric string

const (
	MetricLeadsCreated       Metric = "LEADS_CREATED"
	MetricWorkflowsExecuted  Metric = "WORKFLOWS_EXECUTED"
	MetricEnrichmentRequests Metric = "ENRICHMENT_REQUESTS"
	MetricRepliesClassified  Metric = "REPLIES_CLASSIFIED"
)

// Entry is one audit log row.
type Entry struct {
	Action     string
	TenantID   uuid.UUID
	TargetType string
	TargetID   string
	Details    map[string]any
	Timestamp  time.Time
}

// Repository provides data access for the audit log and usage metrics.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one audit entry.
func (r *Repository) Insert(ctx context.Context, entry Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (action, tenant_id, target_type, target_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.Action, entry.TenantID, entry.TargetType, entry.TargetID, entry.Details, entry.Timestamp)
	return err
}

// IncrementUsage bumps the per-tenant daily counter in one atomic statement.
func (r *Repository) IncrementUsage(ctx context.Context, tenantID uuid.UUID, metric Metric, day time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO usage_metrics (tenant_id, metric, day, count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, metric, day)
		DO UPDATE SET count = usage_metrics.count + 1
	`, tenantID, metric, day.UTC().Truncate(24*time.Hour))
	return err
}
