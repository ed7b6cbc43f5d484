package audit

import (
	"context"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the data access surface the recorder needs. Satisfied by *Repository.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
	IncrementUsage(ctx context.Context, tenantID uuid.UUID, metric Metric, day time.Time) error
}

// Notifier is the operator notification sink. Satisfied by notification.Sink.
type Notifier interface {
	Notify(ctx context.Context, tenantID uuid.UUID, level, message string)
}

// Recorder turns domain events into audit entries and usage counters. Every
// failure in here is logged and swallowed: bookkeeping must never push an
// error back into the pipeline that emitted the event.
type Recorder struct {
	store    Store
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

// NewRecorder creates a new audit recorder.
func NewRecorder(store Store, notifier Notifier, log *logger.Logger) *Recorder {
	return &Recorder{
		store:    store,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Subscribe registers the recorder on every event it audits.
func (r *Recorder) Subscribe(bus events.Bus) {
	names := []string{
		events.LeadCreated{}.EventName(),
		events.LeadFieldsMerged{}.EventName(),
		events.WorkflowCompletionApplied{}.EventName(),
		events.WorkflowCompletionRejected{}.EventName(),
		events.CampaignTransitionApplied{}.EventName(),
		events.CampaignTransitionRejected{}.EventName(),
		events.ReplyRecorded{}.EventName(),
		events.SystemNotificationReceived{}.EventName(),
		events.EnrichmentRequested{}.EventName(),
		events.EnrichmentSucceeded{}.EventName(),
		events.EnrichmentFailed{}.EventName(),
	}
	for _, name := range names {
		bus.Subscribe(name, events.HandlerFunc(r.handle))
	}
}

func (r *Recorder) handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		r.record(ctx, Entry{
			Action: "LEAD_CREATED", TenantID: e.TenantID,
			TargetType: "lead", TargetID: e.LeadID.String(),
			Details: map[string]any{"name": e.Name},
		})
		r.count(ctx, e.TenantID, MetricLeadsCreated)

	case events.LeadFieldsMerged:
		r.record(ctx, Entry{
			Action: "LEAD_FIELDS_MERGED", TenantID: e.TenantID,
			TargetType: "lead", TargetID: e.LeadID.String(),
			Details: map[string]any{"source": e.Source},
		})

	case events.WorkflowCompletionApplied:
		r.record(ctx, Entry{
			Action: "WORKFLOW_TRANSITION_APPLIED", TenantID: e.TenantID,
			TargetType: "workflow_execution", TargetID: e.ExecutionID.String(),
			Details: map[string]any{"workflowId": e.WorkflowID, "status": e.Status, "leadMerged": e.LeadMerged},
		})
		r.count(ctx, e.TenantID, MetricWorkflowsExecuted)

	case events.WorkflowCompletionRejected:
		r.record(ctx, Entry{
			Action: "WORKFLOW_TRANSITION_REJECTED", TenantID: e.TenantID,
			TargetType: "workflow_execution", TargetID: e.ExecutionID.String(),
			Details: map[string]any{"from": e.From, "target": e.Target, "reason": e.Reason},
		})
		r.notify(ctx, e.TenantID, "warn", "workflow transition rejected: "+e.Reason)

	case events.CampaignTransitionApplied:
		r.record(ctx, Entry{
			Action: "CAMPAIGN_TRANSITION_APPLIED", TenantID: e.TenantID,
			TargetType: "campaign", TargetID: e.CampaignID.String(),
			Details: map[string]any{"from": e.From, "to": e.To},
		})

	case events.CampaignTransitionRejected:
		r.record(ctx, Entry{
			Action: "CAMPAIGN_TRANSITION_REJECTED", TenantID: e.TenantID,
			TargetType: "campaign", TargetID: e.CampaignID.String(),
			Details: map[string]any{"from": e.From, "target": e.Target, "reason": e.Reason},
		})
		r.notify(ctx, e.TenantID, "warn", "campaign transition rejected: "+e.Reason)

	case events.ReplyRecorded:
		r.record(ctx, Entry{
			Action: "REPLY_RECORDED", TenantID: e.TenantID,
			TargetType: "lead", TargetID: e.LeadID.String(),
			Details: map[string]any{"replyId": e.ReplyID},
		})
		r.count(ctx, e.TenantID, MetricRepliesClassified)

	case events.SystemNotificationReceived:
		r.record(ctx, Entry{
			Action: "NOTIFICATION_RECEIVED", TenantID: e.TenantID,
			TargetType: "tenant", TargetID: e.TenantID.String(),
			Details: map[string]any{"message": e.Message},
		})
		r.notify(ctx, e.TenantID, "info", e.Message)

	case events.EnrichmentRequested:
		r.record(ctx, Entry{
			Action: "ENRICHMENT_REQUESTED", TenantID: e.TenantID,
			TargetType: "enrichment_request", TargetID: e.RequestID.String(),
			Details: map[string]any{"leadId": e.LeadID.String()},
		})
		r.count(ctx, e.TenantID, MetricEnrichmentRequests)

	case events.EnrichmentSucceeded:
		r.record(ctx, Entry{
			Action: "ENRICHMENT_SUCCEEDED", TenantID: e.TenantID,
			TargetType: "enrichment_request", TargetID: e.RequestID.String(),
			Details: map[string]any{"provider": e.Provider, "attempts": e.Attempts, "leadMerged": e.LeadMerged},
		})

	case events.EnrichmentFailed:
		r.record(ctx, Entry{
			Action: "ENRICHMENT_FAILED", TenantID: e.TenantID,
			TargetType: "enrichment_request", TargetID: e.RequestID.String(),
			Details: map[string]any{"provider": e.Provider, "attempts": e.Attempts, "status": e.Status, "reason": e.Reason},
		})
		r.notify(ctx, e.TenantID, "warn", "enrichment failed: "+e.Reason)
	}
	return nil
}

func (r *Recorder) record(ctx context.Context, entry Entry) {
	entry.Timestamp = r.now().UTC()
	if err := r.store.Insert(ctx, entry); err != nil {
		r.log.DatabaseError("audit.Insert", err)
	}
}

func (r *Recorder) count(ctx context.Context, tenantID uuid.UUID, metric Metric) {
	if err := r.store.IncrementUsage(ctx, tenantID, metric, r.now()); err != nil {
		r.log.DatabaseError("audit.IncrementUsage", err)
	}
}

func (r *Recorder) notify(ctx context.Context, tenantID uuid.UUID, level, message string) {
	if r.notifier == nil {
		return
	}
	r.notifier.Notify(ctx, tenantID, level, message)
}
