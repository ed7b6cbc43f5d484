package leads

import (
	"context"
	"errors"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"

	"github.com/google/uuid"
)

// maxMergeRetries bounds the optimistic-concurrency retry loop on lead updates.
const maxMergeRetries = 3

// Store is the data access surface the service needs. Satisfied by *Repository.
type Store interface {
	Create(ctx context.Context, tenantID uuid.UUID, name string, email, phone *string) (domain.Lead, error)
	GetByID(ctx context.Context, id, tenantID uuid.UUID) (domain.Lead, error)
	UpdateEnrichedFields(ctx context.Context, lead domain.Lead) error
	RecordReply(ctx context.Context, tenantID, leadID uuid.UUID, replyID, content string) error
}

// Service owns lead mutations issued by the ingestion core.
type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
}

// NewService creates a new leads service.
func NewService(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// Create stores a new lead for the tenant. Phone values are normalized to
// E.164 before storage.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, name string, email, phoneNumber *string) (domain.Lead, error) {
	if phoneNumber != nil && *phoneNumber != "" {
		normalized := phone.NormalizeE164(*phoneNumber)
		phoneNumber = &normalized
	}

	lead, err := s.store.Create(ctx, tenantID, name, email, phoneNumber)
	if err != nil {
		return domain.Lead{}, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenantID,
		LeadID:    lead.ID,
		Name:      lead.Name,
	})
	return lead, nil
}

// Get returns a lead scoped to the tenant.
func (s *Service) Get(ctx context.Context, leadID, tenantID uuid.UUID) (domain.Lead, error) {
	lead, err := s.store.GetByID(ctx, leadID, tenantID)
	if errors.Is(err, ErrLeadNotFound) {
		return domain.Lead{}, apperr.NotFound("lead not found").WithOp("leads.Get")
	}
	return lead, err
}

// MergeEnrichedFields merges a patch into the lead record. Only non-null
// incoming values overwrite existing fields. Concurrent updates on the same
// lead are serialized by retrying on a stale version rather than locking.
// Returns true if the stored lead changed.
func (s *Service) MergeEnrichedFields(ctx context.Context, leadID, tenantID uuid.UUID, patch domain.FieldPatch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}

	for attempt := 0; attempt < maxMergeRetries; attempt++ {
		lead, err := s.store.GetByID(ctx, leadID, tenantID)
		if errors.Is(err, ErrLeadNotFound) {
			return false, apperr.NotFound("lead not found").WithOp("leads.MergeEnrichedFields")
		}
		if err != nil {
			return false, err
		}

		if !domain.Merge(&lead, patch) {
			return false, nil
		}

		err = s.store.UpdateEnrichedFields(ctx, lead)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, ErrStaleLead) {
			return false, err
		}
		s.log.Debug("lead merge lost version race, retrying", "leadId", leadID, "attempt", attempt+1)
	}

	return false, apperr.Conflict("lead was updated concurrently").WithOp("leads.MergeEnrichedFields")
}

// RecordReply stores an inbound reply for a lead known to the tenant.
func (s *Service) RecordReply(ctx context.Context, tenantID, leadID uuid.UUID, replyID, content string) error {
	if _, err := s.store.GetByID(ctx, leadID, tenantID); err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			return apperr.NotFound("lead not found").WithOp("leads.RecordReply")
		}
		return err
	}
	return s.store.RecordReply(ctx, tenantID, leadID, replyID, content)
}
