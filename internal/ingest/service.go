package ingest

import (
	"context"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/workflows"
	wfdomain "leadflow_backend/internal/workflows/domain"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Outcome is the pipeline's verdict on an inbound event.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
)

// Result is returned to the webhook handler. Duplicates are not errors; the
// sender gets a 200 either way so it stops redelivering.
type Result struct {
	Outcome   Outcome
	Kind      EventKind
	Duplicate bool
}

// CompletionApplier records execution starts and applies workflow completions.
// Satisfied by workflows.Service.
type CompletionApplier interface {
	StartExecution(ctx context.Context, workflowID string, leadID, tenantID uuid.UUID) (workflows.Execution, error)
	ApplyCompletion(ctx context.Context, input workflows.CompletionInput) (workflows.CompletionResult, error)
}

// ReplyRecorder stores inbound replies. Satisfied by leads.Service.
type ReplyRecorder interface {
	RecordReply(ctx context.Context, tenantID, leadID uuid.UUID, replyID, content string) error
}

// EnrichmentRequester accepts enrichment requests for async dispatch.
// Satisfied by enrichment.Service.
type EnrichmentRequester interface {
	RequestEnrichment(ctx context.Context, tenantID, leadID uuid.UUID, trigger string) error
}

// ResultApplier applies provider callbacks posted to the enrichment hook.
// Satisfied by enrichment.Service.
type ResultApplier interface {
	ApplyProviderResult(ctx context.Context, tenantID, leadID uuid.UUID, provider, requestID, status string, data map[string]any) error
}

// Service runs the ingestion pipeline: classify, guard, apply, publish.
type Service struct {
	guard       *Guard
	completions CompletionApplier
	replies     ReplyRecorder
	enricher    EnrichmentRequester
	results     ResultApplier
	bus         events.Bus
	log         *logger.Logger
}

// NewService creates a new ingest service.
func NewService(guard *Guard, completions CompletionApplier, replies ReplyRecorder, enricher EnrichmentRequester, results ResultApplier, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		guard:       guard,
		completions: completions,
		replies:     replies,
		enricher:    enricher,
		results:     results,
		bus:         bus,
		log:         log,
	}
}

// Process runs one inbound payload through the pipeline. The idempotency
// record is reserved before any state changes, so a crash after the
// reservation reads as already-applied on redelivery.
func (s *Service) Process(ctx context.Context, ev InboundEvent) (Result, error) {
	classified, err := Classify(ev)
	if err != nil {
		return Result{}, err
	}

	if classified.DedupKey != "" {
		fresh, err := s.guard.CheckAndReserve(ctx, classified.DedupKey, classified.TenantID)
		if err != nil {
			return Result{}, err
		}
		if !fresh {
			s.log.WebhookEvent(ev.Source, string(classified.Kind), classified.TenantID.String(), true)
			return Result{Outcome: OutcomeDuplicate, Kind: classified.Kind, Duplicate: true}, nil
		}
	}

	switch classified.Kind {
	case KindWorkflowCompletion:
		err = s.processCompletion(ctx, classified)
	case KindReplyReceived:
		err = s.processReply(ctx, classified)
	case KindEnrichmentResult:
		err = s.processEnrichmentResult(ctx, classified)
	case KindNotification:
		s.bus.Publish(ctx, events.SystemNotificationReceived{
			BaseEvent: events.NewBaseEvent(),
			TenantID:  classified.TenantID,
			Message:   classified.Message,
		})
	}
	if err != nil {
		return Result{}, err
	}

	s.log.WebhookEvent(ev.Source, string(classified.Kind), classified.TenantID.String(), false)
	return Result{Outcome: OutcomeProcessed, Kind: classified.Kind}, nil
}

func (s *Service) processCompletion(ctx context.Context, classified ClassifiedEvent) error {
	completion := classified.Workflow

	// The automation engine reports STARTED when it picks up a workflow; that
	// report is what creates the execution row the later completion targets.
	if completion.Status == string(wfdomain.StatusStarted) {
		_, err := s.completions.StartExecution(ctx, completion.WorkflowID, completion.LeadID, classified.TenantID)
		return err
	}

	result, err := s.completions.ApplyCompletion(ctx, workflows.CompletionInput{
		WorkflowID:   completion.WorkflowID,
		LeadID:       completion.LeadID,
		TenantID:     classified.TenantID,
		Status:       wfdomain.Status(completion.Status),
		OutputData:   completion.OutputData,
		ErrorMessage: completion.ErrorMessage,
	})
	if err != nil {
		return err
	}

	if result.Applied && wantsEnrichment(completion) {
		if err := s.enricher.RequestEnrichment(ctx, classified.TenantID, completion.LeadID, completion.WorkflowID); err != nil {
			// Dispatch failures are recorded in the enrichment request's own
			// lifecycle; the webhook sender is not the one to retry them.
			s.log.Error("enrichment request failed",
				"error", err, "leadId", completion.LeadID, "workflowId", completion.WorkflowID)
		}
	}
	return nil
}

func wantsEnrichment(completion *WorkflowCompletion) bool {
	if completion.Status != string(wfdomain.StatusSuccess) || completion.OutputData == nil {
		return false
	}
	flag, ok := completion.OutputData["requestEnrichment"].(bool)
	return ok && flag
}

func (s *Service) processReply(ctx context.Context, classified ClassifiedEvent) error {
	reply := classified.Reply
	if err := s.replies.RecordReply(ctx, classified.TenantID, reply.LeadID, reply.ReplyID, reply.Content); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.ReplyRecorded{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  classified.TenantID,
		LeadID:    reply.LeadID,
		ReplyID:   reply.ReplyID,
	})
	return nil
}

func (s *Service) processEnrichmentResult(ctx context.Context, classified ClassifiedEvent) error {
	result := classified.Enrichment
	return s.results.ApplyProviderResult(ctx, classified.TenantID, result.LeadID,
		result.Provider, result.RequestID, result.Status, result.Data)
}
