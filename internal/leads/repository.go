// Package leads provides the lead record bounded context: tenant-scoped
// lookups, reply capture, and versioned enrichment updates.
package leads

import (
	"context"
	"errors"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrLeadNotFound is returned when a lead is unknown to the tenant.
	ErrLeadNotFound = errors.New("lead not found")
	// ErrStaleLead is returned when a versioned update lost a concurrent race.
	ErrStaleLead = errors.New("stale lead version")
)

// Repository provides data access for leads and lead replies.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new leads repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new lead for the tenant.
func (r *Repository) Create(ctx context.Context, tenantID uuid.UUID, name string, email, phone *string) (domain.Lead, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (tenant_id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, tenant_id, name, email, phone, company, job_title, industry,
		          company_size, email_verified, version, created_at, updated_at
	`, tenantID, name, email, phone).Scan(
		&lead.ID, &lead.TenantID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company,
		&lead.JobTitle, &lead.Industry, &lead.CompanySize, &lead.EmailVerified,
		&lead.Version, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

// GetByID retrieves a lead scoped to the tenant.
func (r *Repository) GetByID(ctx context.Context, id, tenantID uuid.UUID) (domain.Lead, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, email, phone, company, job_title, industry,
		       company_size, email_verified, version, created_at, updated_at
		FROM leads
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID).Scan(
		&lead.ID, &lead.TenantID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company,
		&lead.JobTitle, &lead.Industry, &lead.CompanySize, &lead.EmailVerified,
		&lead.Version, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrLeadNotFound
	}
	return lead, err
}

// UpdateEnrichedFields persists merged lead fields using the version column
// as a compare-and-swap guard. Returns ErrStaleLead when a concurrent update
// won the race.
func (r *Repository) UpdateEnrichedFields(ctx context.Context, lead domain.Lead) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET name = $1, email = $2, phone = $3, company = $4, job_title = $5,
		    industry = $6, company_size = $7, email_verified = $8,
		    version = version + 1, updated_at = now()
		WHERE id = $9 AND tenant_id = $10 AND version = $11
	`, lead.Name, lead.Email, lead.Phone, lead.Company, lead.JobTitle,
		lead.Industry, lead.CompanySize, lead.EmailVerified,
		lead.ID, lead.TenantID, lead.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleLead
	}
	return nil
}

// RecordReply stores an inbound reply against a lead. The reply_id unique
// constraint makes redelivered replies a no-op at the storage layer too.
func (r *Repository) RecordReply(ctx context.Context, tenantID, leadID uuid.UUID, replyID, content string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_replies (reply_id, lead_id, tenant_id, content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (reply_id) DO NOTHING
	`, replyID, leadID, tenantID, content)
	return err
}
