package campaigns

import (
	"context"
	"errors"
	"fmt"

	"leadflow_backend/internal/campaigns/domain"
	"leadflow_backend/internal/events"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the data access surface the service needs. Satisfied by *Repository.
type Store interface {
	Create(ctx context.Context, tenantID uuid.UUID, name string) (Campaign, error)
	GetByID(ctx context.Context, id, tenantID uuid.UUID) (Campaign, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Campaign, error)
	UpdateStatus(ctx context.Context, id, tenantID uuid.UUID, from, to domain.Status) (Campaign, error)
}

// Service validates and applies campaign lifecycle transitions.
// Policy is "reject, don't coerce": an illegal transition returns an error
// and leaves the stored status untouched.
type Service struct {
	store Store
	table *domain.TransitionTable
	bus   events.Bus
	log   *logger.Logger
}

// NewService creates a new campaigns service.
func NewService(store Store, table *domain.TransitionTable, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, table: table, bus: bus, log: log}
}

// Create adds a new campaign in DRAFT status.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, name string) (Campaign, error) {
	return s.store.Create(ctx, tenantID, name)
}

// Get returns a campaign scoped to the tenant.
func (s *Service) Get(ctx context.Context, id, tenantID uuid.UUID) (Campaign, error) {
	campaign, err := s.store.GetByID(ctx, id, tenantID)
	if errors.Is(err, ErrCampaignNotFound) {
		return Campaign{}, apperr.NotFound("campaign not found").WithOp("campaigns.Get")
	}
	return campaign, err
}

// List returns all campaigns for the tenant.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]Campaign, error) {
	return s.store.ListByTenant(ctx, tenantID)
}

// ApplyTransition moves the campaign to the target status if the edge is
// legal. The update is a compare-and-swap on the current status, so two
// concurrent transitions cannot both apply.
func (s *Service) ApplyTransition(ctx context.Context, id, tenantID uuid.UUID, target domain.Status) (Campaign, error) {
	campaign, err := s.store.GetByID(ctx, id, tenantID)
	if errors.Is(err, ErrCampaignNotFound) {
		return Campaign{}, apperr.NotFound("campaign not found").WithOp("campaigns.ApplyTransition")
	}
	if err != nil {
		return Campaign{}, err
	}

	if !s.table.IsKnown(target) {
		return Campaign{}, apperr.Validation(fmt.Sprintf("unknown campaign status %q", target)).
			WithOp("campaigns.ApplyTransition")
	}

	if !s.table.CanTransition(campaign.Status, target) {
		reason := fmt.Sprintf("illegal transition %s -> %s", campaign.Status, target)
		s.log.TransitionRejected("campaign", id.String(), string(campaign.Status), string(target))
		s.bus.Publish(ctx, events.CampaignTransitionRejected{
			BaseEvent:  events.NewBaseEvent(),
			TenantID:   tenantID,
			CampaignID: id,
			From:       string(campaign.Status),
			Target:     string(target),
			Reason:     reason,
		})
		return Campaign{}, apperr.Conflict(reason).WithOp("campaigns.ApplyTransition")
	}

	updated, err := s.store.UpdateStatus(ctx, id, tenantID, campaign.Status, target)
	if errors.Is(err, ErrStaleCampaign) {
		return Campaign{}, apperr.Conflict("campaign was updated concurrently").
			WithOp("campaigns.ApplyTransition")
	}
	if err != nil {
		return Campaign{}, err
	}

	s.bus.Publish(ctx, events.CampaignTransitionApplied{
		BaseEvent:  events.NewBaseEvent(),
		TenantID:   tenantID,
		CampaignID: id,
		From:       string(campaign.Status),
		To:         string(target),
	})

	return updated, nil
}
