// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadflow_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Workflow Execution Events
// =============================================================================

// WorkflowCompletionApplied is published when a workflow completion signal
// moved an execution into a terminal state.
type WorkflowCompletionApplied struct {
	BaseEvent
	TenantID    uuid.UUID `json:"tenantId"`
	ExecutionID uuid.UUID `json:"executionId"`
	WorkflowID  string    `json:"workflowId"`
	LeadID      uuid.UUID `json:"leadId"`
	Status      string    `json:"status"`
	LeadMerged  bool      `json:"leadMerged"`
}

func (e WorkflowCompletionApplied) EventName() string { return "workflows.completion.applied" }

// WorkflowCompletionRejected is published when a completion signal named an
// illegal transition and was rejected without mutating state.
type WorkflowCompletionRejected struct {
	BaseEvent
	TenantID    uuid.UUID `json:"tenantId"`
	ExecutionID uuid.UUID `json:"executionId"`
	WorkflowID  string    `json:"workflowId"`
	LeadID      uuid.UUID `json:"leadId"`
	From        string    `json:"from"`
	Target      string    `json:"target"`
	Reason      string    `json:"reason"`
}

func (e WorkflowCompletionRejected) EventName() string { return "workflows.completion.rejected" }

// =============================================================================
// Ingest Events
// =============================================================================

// ReplyRecorded is published when an inbound reply was classified and stored
// against a lead.
type ReplyRecorded struct {
	BaseEvent
	TenantID uuid.UUID `json:"tenantId"`
	LeadID   uuid.UUID `json:"leadId"`
	ReplyID  string    `json:"replyId"`
}

func (e ReplyRecorded) EventName() string { return "ingest.reply.recorded" }

// SystemNotificationReceived is published for tenant-scoped payloads that
// carry no lead reference. These never reach the state machines.
type SystemNotificationReceived struct {
	BaseEvent
	TenantID uuid.UUID `json:"tenantId"`
	Message  string    `json:"message"`
}

func (e SystemNotificationReceived) EventName() string { return "ingest.notification.received" }

// =============================================================================
// Lead Events
// =============================================================================

// LeadCreated is published when a new lead record is stored.
type LeadCreated struct {
	BaseEvent
	TenantID uuid.UUID `json:"tenantId"`
	LeadID   uuid.UUID `json:"leadId"`
	Name     string    `json:"name"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadFieldsMerged is published when enriched values changed a lead record.
type LeadFieldsMerged struct {
	BaseEvent
	TenantID uuid.UUID `json:"tenantId"`
	LeadID   uuid.UUID `json:"leadId"`
	Source   string    `json:"source"`
}

func (e LeadFieldsMerged) EventName() string { return "leads.fields.merged" }

// =============================================================================
// Campaign Events
// =============================================================================

// CampaignTransitionApplied is published when a campaign changed status.
type CampaignTransitionApplied struct {
	BaseEvent
	TenantID   uuid.UUID `json:"tenantId"`
	CampaignID uuid.UUID `json:"campaignId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
}

func (e CampaignTransitionApplied) EventName() string { return "campaigns.transition.applied" }

// CampaignTransitionRejected is published when a campaign transition was
// rejected as illegal.
type CampaignTransitionRejected struct {
	BaseEvent
	TenantID   uuid.UUID `json:"tenantId"`
	CampaignID uuid.UUID `json:"campaignId"`
	From       string    `json:"from"`
	Target     string    `json:"target"`
	Reason     string    `json:"reason"`
}

func (e CampaignTransitionRejected) EventName() string { return "campaigns.transition.rejected" }

// =============================================================================
// Enrichment Events
// =============================================================================

// EnrichmentRequested is published when an enrichment request was accepted
// for dispatch.
type EnrichmentRequested struct {
	BaseEvent
	TenantID  uuid.UUID `json:"tenantId"`
	LeadID    uuid.UUID `json:"leadId"`
	RequestID uuid.UUID `json:"requestId"`
}

func (e EnrichmentRequested) EventName() string { return "enrichment.requested" }

// EnrichmentSucceeded is published when a provider returned a normalized
// result and it was merged into the lead.
type EnrichmentSucceeded struct {
	BaseEvent
	TenantID   uuid.UUID `json:"tenantId"`
	LeadID     uuid.UUID `json:"leadId"`
	RequestID  uuid.UUID `json:"requestId"`
	Provider   string    `json:"provider"`
	Attempts   int       `json:"attempts"`
	LeadMerged bool      `json:"leadMerged"`
}

func (e EnrichmentSucceeded) EventName() string { return "enrichment.succeeded" }

// EnrichmentFailed is published when dispatch gave up on a request.
type EnrichmentFailed struct {
	BaseEvent
	TenantID  uuid.UUID `json:"tenantId"`
	LeadID    uuid.UUID `json:"leadId"`
	RequestID uuid.UUID `json:"requestId"`
	Provider  string    `json:"provider"`
	Attempts  int       `json:"attempts"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason"`
}

func (e EnrichmentFailed) EventName() string { return "enrichment.failed" }
