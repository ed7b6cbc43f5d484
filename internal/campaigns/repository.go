// Package campaigns provides the campaign lifecycle bounded context.
package campaigns

import (
	"context"
	"errors"
	"time"

	"leadflow_backend/internal/campaigns/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrCampaignNotFound is returned when a campaign is unknown to the tenant.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrStaleCampaign is returned when a status update lost a concurrent race.
	ErrStaleCampaign = errors.New("stale campaign status")
)

// Campaign is a tenant-scoped campaign record.
type Campaign struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Status    domain.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides data access for campaigns.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new campaigns repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new campaign in DRAFT status.
func (r *Repository) Create(ctx context.Context, tenantID uuid.UUID, name string) (Campaign, error) {
	var campaign Campaign
	err := r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (tenant_id, name, status)
		VALUES ($1, $2, $3)
		RETURNING id, tenant_id, name, status, created_at, updated_at
	`, tenantID, name, domain.StatusDraft).Scan(
		&campaign.ID, &campaign.TenantID, &campaign.Name, &campaign.Status,
		&campaign.CreatedAt, &campaign.UpdatedAt,
	)
	return campaign, err
}

// GetByID retrieves a campaign scoped to the tenant.
func (r *Repository) GetByID(ctx context.Context, id, tenantID uuid.UUID) (Campaign, error) {
	var campaign Campaign
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, status, created_at, updated_at
		FROM campaigns
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID).Scan(
		&campaign.ID, &campaign.TenantID, &campaign.Name, &campaign.Status,
		&campaign.CreatedAt, &campaign.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, ErrCampaignNotFound
	}
	return campaign, err
}

// ListByTenant returns all campaigns for a tenant, newest first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, status, created_at, updated_at
		FROM campaigns
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		var campaign Campaign
		if err := rows.Scan(
			&campaign.ID, &campaign.TenantID, &campaign.Name, &campaign.Status,
			&campaign.CreatedAt, &campaign.UpdatedAt,
		); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}

// UpdateStatus moves a campaign from one status to another with a
// compare-and-swap on the current status. A concurrent transition makes the
// WHERE clause miss and returns ErrStaleCampaign instead of overwriting.
func (r *Repository) UpdateStatus(ctx context.Context, id, tenantID uuid.UUID, from, to domain.Status) (Campaign, error) {
	var campaign Campaign
	err := r.pool.QueryRow(ctx, `
		UPDATE campaigns
		SET status = $1, updated_at = now()
		WHERE id = $2 AND tenant_id = $3 AND status = $4
		RETURNING id, tenant_id, name, status, created_at, updated_at
	`, to, id, tenantID, from).Scan(
		&campaign.ID, &campaign.TenantID, &campaign.Name, &campaign.Status,
		&campaign.CreatedAt, &campaign.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, ErrStaleCampaign
	}
	return campaign, err
}
