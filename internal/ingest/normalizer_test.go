package ingest

import (
	"strings"
	"testing"

	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestClassifyWorkflowCompletion(t *testing.T) {
	tenantID, leadID := uuid.New(), uuid.New()

	classified, err := Classify(InboundEvent{
		Source: SourceAutomation,
		Payload: map[string]any{
			"tenantId":   tenantID.String(),
			"workflowId": "wf-enrich",
			"leadId":     leadID.String(),
			"status":     "SUCCESS",
			"outputData": map[string]any{"company": "Acme"},
		},
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if classified.Kind != KindWorkflowCompletion {
		t.Fatalf("kind = %s, want WORKFLOW_COMPLETION", classified.Kind)
	}
	if classified.Workflow.WorkflowID != "wf-enrich" || classified.Workflow.LeadID != leadID {
		t.Errorf("completion fields not carried: %+v", classified.Workflow)
	}
	want := "workflow:wf-enrich:" + leadID.String() + ":SUCCESS"
	if classified.DedupKey != want {
		t.Errorf("dedupKey = %s, want %s", classified.DedupKey, want)
	}
}

func TestClassifyStatusWinsOverReplyMarkers(t *testing.T) {
	tenantID, leadID := uuid.New(), uuid.New()

	classified, err := Classify(InboundEvent{
		Source: SourceAutomation,
		Payload: map[string]any{
			"tenantId":   tenantID.String(),
			"workflowId": "wf-enrich",
			"leadId":     leadID.String(),
			"status":     "FAILED",
			"content":    "also has content",
		},
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if classified.Kind != KindWorkflowCompletion {
		t.Errorf("kind = %s, want WORKFLOW_COMPLETION to win over reply markers", classified.Kind)
	}
}

func TestClassifyReply(t *testing.T) {
	tenantID, leadID := uuid.New(), uuid.New()

	tests := []struct {
		name        string
		payload     map[string]any
		wantContent string
	}{
		{
			name: "content field",
			payload: map[string]any{
				"tenantId": tenantID.String(),
				"leadId":   leadID.String(),
				"replyId":  "r-100",
				"content":  "interested, call me",
			},
			wantContent: "interested, call me",
		},
		{
			name: "replyContent fallback",
			payload: map[string]any{
				"tenantId":     tenantID.String(),
				"leadId":       leadID.String(),
				"replyId":      "r-101",
				"replyContent": "not interested",
			},
			wantContent: "not interested",
		},
		{
			name: "content preferred over replyContent",
			payload: map[string]any{
				"tenantId":     tenantID.String(),
				"leadId":       leadID.String(),
				"replyId":      "r-102",
				"content":      "primary",
				"replyContent": "secondary",
			},
			wantContent: "primary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified, err := Classify(InboundEvent{Source: SourceReplies, Payload: tt.payload})
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if classified.Kind != KindReplyReceived {
				t.Fatalf("kind = %s, want REPLY_RECEIVED", classified.Kind)
			}
			if classified.Reply.Content != tt.wantContent {
				t.Errorf("content = %q, want %q", classified.Reply.Content, tt.wantContent)
			}
		})
	}
}

func TestClassifyEnrichmentResult(t *testing.T) {
	tenantID, leadID := uuid.New(), uuid.New()

	classified, err := Classify(InboundEvent{
		Source: SourceEnrichment,
		Payload: map[string]any{
			"tenantId":  tenantID.String(),
			"leadId":    leadID.String(),
			"provider":  "apollo",
			"requestId": "req-7",
			"status":    "SUCCESS",
			"data":      map[string]any{"jobTitle": "CTO"},
		},
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if classified.Kind != KindEnrichmentResult {
		t.Fatalf("kind = %s, want ENRICHMENT_RESULT", classified.Kind)
	}
	if classified.DedupKey != "enrichment:apollo:req-7" {
		t.Errorf("dedupKey = %s", classified.DedupKey)
	}
}

func TestClassifyNotification(t *testing.T) {
	tenantID := uuid.New()

	classified, err := Classify(InboundEvent{
		Source: SourceAutomation,
		Payload: map[string]any{
			"tenantId": tenantID.String(),
			"message":  "quota warning",
		},
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if classified.Kind != KindNotification {
		t.Fatalf("kind = %s, want NOTIFICATION", classified.Kind)
	}
	if classified.DedupKey != "" {
		t.Errorf("notifications must carry no dedup key, got %s", classified.DedupKey)
	}
}

func TestClassifyMissingFields(t *testing.T) {
	tenantID, leadID := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		payload map[string]any
		field   string
	}{
		{
			name:    "missing tenantId",
			payload: map[string]any{"status": "SUCCESS", "workflowId": "wf", "leadId": leadID.String()},
			field:   "tenantId",
		},
		{
			name:    "completion missing workflowId",
			payload: map[string]any{"tenantId": tenantID.String(), "status": "SUCCESS", "leadId": leadID.String()},
			field:   "workflowId",
		},
		{
			name:    "completion missing leadId",
			payload: map[string]any{"tenantId": tenantID.String(), "status": "SUCCESS", "workflowId": "wf"},
			field:   "leadId",
		},
		{
			name:    "reply missing leadId",
			payload: map[string]any{"tenantId": tenantID.String(), "replyId": "r-1", "content": "hi"},
			field:   "leadId",
		},
		{
			// The reply id is the dedup identity; content alone is not enough.
			name:    "reply missing replyId",
			payload: map[string]any{"tenantId": tenantID.String(), "leadId": leadID.String(), "content": "hi"},
			field:   "replyId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(InboundEvent{Source: SourceAutomation, Payload: tt.payload})
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("got %v, want validation error", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q must name the missing field %q", err.Error(), tt.field)
			}
		})
	}
}
