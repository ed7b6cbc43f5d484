// Package ingest provides the webhook ingestion core: payload normalization,
// idempotency guarding, and dispatch into the state machines.
package ingest

import (
	"fmt"
	"strings"

	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

// EventKind is the normalized classification of an inbound payload.
type EventKind string

const (
	KindWorkflowCompletion EventKind = "WORKFLOW_COMPLETION"
	KindReplyReceived      EventKind = "REPLY_RECEIVED"
	KindEnrichmentResult   EventKind = "ENRICHMENT_RESULT"
	KindNotification       EventKind = "NOTIFICATION"
)

// Webhook sources, named after the routes payloads arrive on.
const (
	SourceAutomation = "automation"
	SourceReplies    = "replies"
	SourceEnrichment = "enrichment"
)

// InboundEvent is a raw webhook payload plus the route it arrived on.
type InboundEvent struct {
	Source  string
	Payload map[string]any
}

// WorkflowCompletion carries a normalized completion signal.
type WorkflowCompletion struct {
	WorkflowID   string
	LeadID       uuid.UUID
	Status       string
	OutputData   map[string]any
	ErrorMessage *string
}

// Reply carries a normalized inbound reply.
type Reply struct {
	ReplyID string
	LeadID  uuid.UUID
	Content string
}

// EnrichmentResult carries a provider callback posted to the enrichment hook.
type EnrichmentResult struct {
	Provider  string
	RequestID string
	LeadID    uuid.UUID
	Status    string
	Data      map[string]any
}

// ClassifiedEvent is the normalizer's output. Exactly one of the typed fields
// matching Kind is set. Notifications carry no DedupKey and skip the guard.
type ClassifiedEvent struct {
	Kind       EventKind
	TenantID   uuid.UUID
	DedupKey   string
	Workflow   *WorkflowCompletion
	Reply      *Reply
	Enrichment *EnrichmentResult
	Message    string
}

// Classify normalizes a raw payload into exactly one event kind. Matching is
// ordered: a completion status wins over reply markers, reply markers win over
// enrichment callbacks, and anything else with a tenant is a notification.
// Provider callbacks carry their own status field, so payloads from the
// enrichment hook never match the completion rule.
// Classification is pure; it touches no storage.
func Classify(ev InboundEvent) (ClassifiedEvent, error) {
	tenantID, err := requireUUID(ev.Payload, "tenantId")
	if err != nil {
		return ClassifiedEvent{}, err
	}

	if stringValue(ev.Payload, "status") != "" && ev.Source != SourceEnrichment {
		return classifyCompletion(ev.Payload, tenantID)
	}
	if hasReplyMarker(ev.Payload) {
		return classifyReply(ev.Payload, tenantID)
	}
	if stringValue(ev.Payload, "provider") != "" && stringValue(ev.Payload, "requestId") != "" {
		return classifyEnrichmentResult(ev.Payload, tenantID)
	}
	return classifyNotification(ev.Payload, tenantID)
}

func classifyCompletion(payload map[string]any, tenantID uuid.UUID) (ClassifiedEvent, error) {
	workflowID := stringValue(payload, "workflowId")
	if workflowID == "" {
		return ClassifiedEvent{}, missingField("workflowId")
	}
	leadID, err := requireUUID(payload, "leadId")
	if err != nil {
		return ClassifiedEvent{}, err
	}
	status := stringValue(payload, "status")

	completion := &WorkflowCompletion{
		WorkflowID: workflowID,
		LeadID:     leadID,
		Status:     status,
		OutputData: mapValue(payload, "outputData"),
	}
	if msg := stringValue(payload, "errorMessage"); msg != "" {
		completion.ErrorMessage = &msg
	}

	return ClassifiedEvent{
		Kind:     KindWorkflowCompletion,
		TenantID: tenantID,
		DedupKey: fmt.Sprintf("workflow:%s:%s:%s", workflowID, leadID, status),
		Workflow: completion,
	}, nil
}

func classifyReply(payload map[string]any, tenantID uuid.UUID) (ClassifiedEvent, error) {
	replyID := stringValue(payload, "replyId")
	if replyID == "" {
		return ClassifiedEvent{}, missingField("replyId")
	}
	leadID, err := requireUUID(payload, "leadId")
	if err != nil {
		return ClassifiedEvent{}, err
	}

	content := stringValue(payload, "content")
	if content == "" {
		content = stringValue(payload, "replyContent")
	}

	return ClassifiedEvent{
		Kind:     KindReplyReceived,
		TenantID: tenantID,
		DedupKey: "reply:" + replyID,
		Reply:    &Reply{ReplyID: replyID, LeadID: leadID, Content: content},
	}, nil
}

func classifyEnrichmentResult(payload map[string]any, tenantID uuid.UUID) (ClassifiedEvent, error) {
	provider := stringValue(payload, "provider")
	requestID := stringValue(payload, "requestId")
	leadID, err := requireUUID(payload, "leadId")
	if err != nil {
		return ClassifiedEvent{}, err
	}

	status := stringValue(payload, "status")
	if status == "" {
		status = "SUCCESS"
	}

	return ClassifiedEvent{
		Kind:     KindEnrichmentResult,
		TenantID: tenantID,
		DedupKey: fmt.Sprintf("enrichment:%s:%s", provider, requestID),
		Enrichment: &EnrichmentResult{
			Provider:  provider,
			RequestID: requestID,
			LeadID:    leadID,
			Status:    status,
			Data:      mapValue(payload, "data"),
		},
	}, nil
}

func classifyNotification(payload map[string]any, tenantID uuid.UUID) (ClassifiedEvent, error) {
	message := stringValue(payload, "message")
	if message == "" {
		message = stringValue(payload, "event")
	}
	return ClassifiedEvent{
		Kind:     KindNotification,
		TenantID: tenantID,
		Message:  message,
	}, nil
}

func hasReplyMarker(payload map[string]any) bool {
	return stringValue(payload, "replyId") != "" ||
		stringValue(payload, "replyContent") != "" ||
		stringValue(payload, "content") != ""
}

func missingField(field string) error {
	return apperr.Validation(fmt.Sprintf("missing required field %q", field)).WithOp("ingest.Classify")
}

func requireUUID(payload map[string]any, field string) (uuid.UUID, error) {
	raw := stringValue(payload, field)
	if raw == "" {
		return uuid.UUID{}, missingField(field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, apperr.Validation(fmt.Sprintf("field %q is not a valid UUID", field)).WithOp("ingest.Classify")
	}
	return id, nil
}

func stringValue(payload map[string]any, key string) string {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return ""
	}
	text, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

func mapValue(payload map[string]any, key string) map[string]any {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	return m
}
