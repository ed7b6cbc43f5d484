package enrichment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow_backend/internal/events"
	leadsdomain "leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the data access surface the service needs. Satisfied by *Repository.
type Store interface {
	Create(ctx context.Context, tenantID, leadID uuid.UUID, trigger string) (RequestRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (RequestRecord, error)
	MarkInProgress(ctx context.Context, id uuid.UUID) error
	MarkOutcome(ctx context.Context, id uuid.UUID, status RequestStatus, provider string, attempts int, lastError *string) (bool, error)
}

// LeadStore reads and merges lead records. Satisfied by leads.Service.
type LeadStore interface {
	Get(ctx context.Context, leadID, tenantID uuid.UUID) (leadsdomain.Lead, error)
	MergeEnrichedFields(ctx context.Context, leadID, tenantID uuid.UUID, patch leadsdomain.FieldPatch) (bool, error)
}

// Enqueuer hands a request off for async dispatch.
type Enqueuer interface {
	Enqueue(ctx context.Context, requestID uuid.UUID) error
}

// Service owns the enrichment request lifecycle.
type Service struct {
	store           Store
	leads           LeadStore
	orchestrator    *Orchestrator
	enqueuer        Enqueuer
	bus             events.Bus
	log             *logger.Logger
	workflowTimeout time.Duration
}

// NewService creates a new enrichment service. workflowTimeout bounds a whole
// dispatch across every attempt and backoff; per-attempt timeouts come from
// the provider settings. The enqueuer is bound afterwards via SetEnqueuer
// because inline dispatch loops back into Dispatch.
func NewService(store Store, leads LeadStore, orchestrator *Orchestrator, workflowTimeout time.Duration, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:           store,
		leads:           leads,
		orchestrator:    orchestrator,
		bus:             bus,
		log:             log,
		workflowTimeout: workflowTimeout,
	}
}

// SetEnqueuer wires the dispatch hand-off. Must be called before the first
// RequestEnrichment.
func (s *Service) SetEnqueuer(enqueuer Enqueuer) {
	s.enqueuer = enqueuer
}

// RequestEnrichment accepts a new enrichment request and queues it for
// dispatch. The caller gets an error only when the request could not be
// recorded; dispatch failures live in the request's own lifecycle.
func (s *Service) RequestEnrichment(ctx context.Context, tenantID, leadID uuid.UUID, trigger string) error {
	record, err := s.store.Create(ctx, tenantID, leadID, trigger)
	if err != nil {
		return fmt.Errorf("creating enrichment request: %w", err)
	}

	s.bus.Publish(ctx, events.EnrichmentRequested{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenantID,
		LeadID:    leadID,
		RequestID: record.ID,
	})

	return s.enqueuer.Enqueue(ctx, record.ID)
}

// Dispatch runs one queued request through the orchestrator. Safe to call
// more than once for the same request: a terminal record short-circuits.
func (s *Service) Dispatch(ctx context.Context, requestID uuid.UUID) error {
	if s.workflowTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.workflowTimeout)
		defer cancel()
	}

	record, err := s.store.GetByID(ctx, requestID)
	if errors.Is(err, ErrRequestNotFound) {
		s.log.Warn("dispatch for unknown enrichment request", "requestId", requestID)
		return nil
	}
	if err != nil {
		return err
	}
	if record.Status.IsTerminal() {
		return nil
	}

	lead, err := s.leads.Get(ctx, record.LeadID, record.TenantID)
	if err != nil {
		reason := "lead no longer available"
		_, _ = s.store.MarkOutcome(ctx, record.ID, RequestFailed, "", record.Attempts, &reason)
		return nil
	}

	req := Request{
		RequestID: record.ID,
		TenantID:  record.TenantID,
		LeadID:    record.LeadID,
		Name:      lead.Name,
		Email:     lead.Email,
		Company:   lead.Company,
	}

	if markErr := s.store.MarkInProgress(ctx, record.ID); markErr != nil {
		s.log.DatabaseError("enrichment.MarkInProgress", markErr)
	}

	result, info, err := s.orchestrator.Dispatch(ctx, req)
	if err != nil {
		return s.recordFailure(ctx, record, info, err)
	}

	merged, err := s.leads.MergeEnrichedFields(ctx, record.LeadID, record.TenantID, result.Patch)
	if err != nil {
		reason := err.Error()
		_, _ = s.store.MarkOutcome(ctx, record.ID, RequestFailed, info.Provider, info.Attempts, &reason)
		return err
	}

	applied, err := s.store.MarkOutcome(ctx, record.ID, RequestSuccess, info.Provider, info.Attempts, nil)
	if err != nil {
		return err
	}
	if !applied {
		// Another path finished this request first; the merge above already
		// followed non-null-overwrite rules, so nothing to unwind.
		return nil
	}

	s.publishSuccess(ctx, record, info.Provider, info.Attempts, merged)
	return nil
}

// ApplyProviderResult applies a provider callback posted to the enrichment
// webhook. A request already finished keeps its first outcome; late results
// are discarded.
func (s *Service) ApplyProviderResult(ctx context.Context, tenantID, leadID uuid.UUID, provider, requestID, status string, data map[string]any) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return apperr.Validation("requestId is not a valid UUID").WithOp("enrichment.ApplyProviderResult")
	}

	record, err := s.store.GetByID(ctx, id)
	if errors.Is(err, ErrRequestNotFound) {
		return apperr.NotFound("enrichment request not found").WithOp("enrichment.ApplyProviderResult")
	}
	if err != nil {
		return err
	}
	if record.TenantID != tenantID || record.LeadID != leadID {
		return apperr.NotFound("enrichment request not found").WithOp("enrichment.ApplyProviderResult")
	}
	if record.Status.IsTerminal() {
		s.log.Debug("late enrichment result discarded", "requestId", id, "provider", provider)
		return nil
	}

	if status != string(RequestSuccess) {
		outcome := RequestFailed
		if status == string(RequestTimeout) {
			outcome = RequestTimeout
		}
		reason := "provider reported " + status
		applied, err := s.store.MarkOutcome(ctx, record.ID, outcome, provider, record.Attempts, &reason)
		if err != nil {
			return err
		}
		if applied {
			s.publishFailure(ctx, record, provider, record.Attempts, outcome, reason)
		}
		return nil
	}

	merged, err := s.leads.MergeEnrichedFields(ctx, leadID, tenantID, leadsdomain.PatchFromMap(data))
	if err != nil {
		return err
	}

	applied, err := s.store.MarkOutcome(ctx, record.ID, RequestSuccess, provider, record.Attempts, nil)
	if err != nil {
		return err
	}
	if applied {
		s.publishSuccess(ctx, record, provider, record.Attempts, merged)
	}
	return nil
}

func (s *Service) recordFailure(ctx context.Context, record RequestRecord, info DispatchInfo, dispatchErr error) error {
	status := RequestFailed
	if errors.Is(dispatchErr, context.DeadlineExceeded) {
		status = RequestTimeout
	}

	reason := dispatchErr.Error()
	applied, err := s.store.MarkOutcome(ctx, record.ID, status, info.Provider, info.Attempts, &reason)
	if err != nil {
		return err
	}
	if applied {
		s.publishFailure(ctx, record, info.Provider, info.Attempts, status, reason)
	}
	return nil
}

func (s *Service) publishSuccess(ctx context.Context, record RequestRecord, provider string, attempts int, merged bool) {
	s.bus.Publish(ctx, events.EnrichmentSucceeded{
		BaseEvent:  events.NewBaseEvent(),
		TenantID:   record.TenantID,
		LeadID:     record.LeadID,
		RequestID:  record.ID,
		Provider:   provider,
		Attempts:   attempts,
		LeadMerged: merged,
	})
	if merged {
		s.bus.Publish(ctx, events.LeadFieldsMerged{
			BaseEvent: events.NewBaseEvent(),
			TenantID:  record.TenantID,
			LeadID:    record.LeadID,
			Source:    provider,
		})
	}
}

func (s *Service) publishFailure(ctx context.Context, record RequestRecord, provider string, attempts int, status RequestStatus, reason string) {
	s.bus.Publish(ctx, events.EnrichmentFailed{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  record.TenantID,
		LeadID:    record.LeadID,
		RequestID: record.ID,
		Provider:  provider,
		Attempts:  attempts,
		Status:    string(status),
		Reason:    reason,
	})
}
