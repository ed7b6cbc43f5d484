package enrichment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RequestStatus is the enrichment request lifecycle status.
type RequestStatus string

const (
	RequestPending    RequestStatus = "PENDING"
	RequestInProgress RequestStatus = "IN_PROGRESS"
	RequestSuccess    RequestStatus = "SUCCESS"
	RequestFailed     RequestStatus = "FAILED"
	RequestTimeout    RequestStatus = "TIMEOUT"
)

// IsTerminal reports whether the request lifecycle is finished.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestSuccess || s == RequestFailed || s == RequestTimeout
}

// ErrRequestNotFound is returned when an enrichment request is unknown.
var ErrRequestNotFound = errors.New("enrichment request not found")

// RequestRecord is a tenant-scoped enrichment request lifecycle row.
// Attempts only ever grows; a terminal status is never overwritten.
type RequestRecord struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	LeadID    uuid.UUID
	Trigger   string
	Status    RequestStatus
	Provider  *string
	Attempts  int
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides data access for enrichment requests.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new enrichment repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new PENDING request.
func (r *Repository) Create(ctx context.Context, tenantID, leadID uuid.UUID, trigger string) (RequestRecord, error) {
	var record RequestRecord
	err := r.pool.QueryRow(ctx, `
		INSERT INTO enrichment_requests (tenant_id, lead_id, trigger, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, tenant_id, lead_id, trigger, status, provider, attempts,
		          last_error, created_at, updated_at
	`, tenantID, leadID, trigger, RequestPending).Scan(
		&record.ID, &record.TenantID, &record.LeadID, &record.Trigger, &record.Status,
		&record.Provider, &record.Attempts, &record.LastError, &record.CreatedAt, &record.UpdatedAt,
	)
	return record, err
}

// GetByID retrieves a request by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (RequestRecord, error) {
	var record RequestRecord
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, lead_id, trigger, status, provider, attempts,
		       last_error, created_at, updated_at
		FROM enrichment_requests
		WHERE id = $1
	`, id).Scan(
		&record.ID, &record.TenantID, &record.LeadID, &record.Trigger, &record.Status,
		&record.Provider, &record.Attempts, &record.LastError, &record.CreatedAt, &record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return RequestRecord{}, ErrRequestNotFound
	}
	return record, err
}

// MarkInProgress records dispatch start. Only a PENDING request moves; the
// provider is recorded with the outcome once selection happened.
func (r *Repository) MarkInProgress(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE enrichment_requests
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, RequestInProgress, id, RequestPending)
	return err
}

// MarkOutcome records the dispatch outcome. Attempts is written with
// GREATEST so the counter never moves backwards, and a request already in a
// terminal status is left alone; late results lose to the first outcome.
// An empty provider means none was ever selected and keeps the column NULL.
func (r *Repository) MarkOutcome(ctx context.Context, id uuid.UUID, status RequestStatus, provider string, attempts int, lastError *string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE enrichment_requests
		SET status = $1, provider = NULLIF($2, ''), attempts = GREATEST(attempts, $3),
		    last_error = $4, updated_at = now()
		WHERE id = $5 AND status NOT IN ($6, $7, $8)
	`, status, provider, attempts, lastError, id, RequestSuccess, RequestFailed, RequestTimeout)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
