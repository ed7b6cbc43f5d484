package workflows

import (
	"context"
	"testing"
	"time"

	"leadflow_backend/internal/events"
	leadsdomain "leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/workflows/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	executions map[uuid.UUID]Execution
	completes  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{executions: make(map[uuid.UUID]Execution)}
}

func (f *fakeStore) Create(_ context.Context, workflowID string, leadID, tenantID uuid.UUID) (Execution, error) {
	exec := Execution{
		ID:         uuid.New(),
		WorkflowID: workflowID,
		LeadID:     leadID,
		TenantID:   tenantID,
		Status:     domain.StatusStarted,
		StartTime:  time.Now().UTC(),
		Version:    1,
	}
	f.executions[exec.ID] = exec
	return exec, nil
}

func (f *fakeStore) GetByWorkflowAndLead(_ context.Context, workflowID string, leadID, tenantID uuid.UUID) (Execution, error) {
	for _, exec := range f.executions {
		if exec.WorkflowID == workflowID && exec.LeadID == leadID && exec.TenantID == tenantID {
			return exec, nil
		}
	}
	return Execution{}, ErrExecutionNotFound
}

func (f *fakeStore) Complete(_ context.Context, exec Execution) error {
	current, ok := f.executions[exec.ID]
	if !ok || current.Version != exec.Version {
		return ErrStaleExecution
	}
	exec.Version++
	f.executions[exec.ID] = exec
	f.completes++
	return nil
}

type fakeMerger struct {
	merges  int
	patches []leadsdomain.FieldPatch
}

func (f *fakeMerger) MergeEnrichedFields(_ context.Context, _, _ uuid.UUID, patch leadsdomain.FieldPatch) (bool, error) {
	f.merges++
	f.patches = append(f.patches, patch)
	return true, nil
}

type syncBus struct {
	published []events.Event
}

func (b *syncBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *syncBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *syncBus) Subscribe(string, events.Handler) {}

func newTestService(store *fakeStore, merger *fakeMerger, bus events.Bus) *Service {
	return NewService(store, domain.NewTransitionTable(), merger, bus, logger.New("development"))
}

func TestApplyCompletionSuccessMergesLead(t *testing.T) {
	store := newFakeStore()
	merger := &fakeMerger{}
	bus := &syncBus{}
	svc := newTestService(store, merger, bus)
	tenantID, leadID := uuid.New(), uuid.New()

	_, _ = store.Create(context.Background(), "wf-enrich", leadID, tenantID)

	result, err := svc.ApplyCompletion(context.Background(), CompletionInput{
		WorkflowID: "wf-enrich",
		LeadID:     leadID,
		TenantID:   tenantID,
		Status:     domain.StatusSuccess,
		OutputData: map[string]any{"company": "Acme", "jobTitle": "VP Sales"},
	})
	if err != nil {
		t.Fatalf("ApplyCompletion: %v", err)
	}
	if !result.Applied {
		t.Error("completion must be applied")
	}
	if !result.LeadMerged {
		t.Error("lead must be merged on success with output data")
	}
	if merger.merges != 1 {
		t.Errorf("merges = %d, want 1", merger.merges)
	}
	if result.Execution.EndTime == nil || result.Execution.DurationMs == nil {
		t.Error("terminal completion must set endTime and durationMs")
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != "workflows.completion.applied" {
		t.Errorf("expected a single workflows.completion.applied event, got %v", bus.published)
	}
}

func TestApplyCompletionTerminalExecutionIsImmutable(t *testing.T) {
	store := newFakeStore()
	merger := &fakeMerger{}
	svc := newTestService(store, merger, &syncBus{})
	tenantID, leadID := uuid.New(), uuid.New()

	_, _ = store.Create(context.Background(), "wf-enrich", leadID, tenantID)

	first, err := svc.ApplyCompletion(context.Background(), CompletionInput{
		WorkflowID: "wf-enrich",
		LeadID:     leadID,
		TenantID:   tenantID,
		Status:     domain.StatusSuccess,
		OutputData: map[string]any{"company": "Acme"},
	})
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}

	errMsg := "engine crashed"
	second, err := svc.ApplyCompletion(context.Background(), CompletionInput{
		WorkflowID:   "wf-enrich",
		LeadID:       leadID,
		TenantID:     tenantID,
		Status:       domain.StatusFailed,
		ErrorMessage: &errMsg,
	})
	if err != nil {
		t.Fatalf("second completion must be a no-op, got %v", err)
	}
	if second.Applied {
		t.Error("completion against a terminal execution must not be applied")
	}
	if second.Execution.Status != domain.StatusSuccess {
		t.Errorf("status = %s, want SUCCESS preserved", second.Execution.Status)
	}
	if second.Execution.ErrorMessage != nil {
		t.Error("errorMessage must stay unset on a SUCCESS record")
	}
	if !second.Execution.EndTime.Equal(*first.Execution.EndTime) {
		t.Error("endTime must not change after the execution is terminal")
	}
	if store.completes != 1 {
		t.Errorf("store writes = %d, want 1", store.completes)
	}
	if merger.merges != 1 {
		t.Errorf("merges = %d, want 1", merger.merges)
	}
}

func TestApplyCompletionFailureSetsErrorAndSkipsMerge(t *testing.T) {
	store := newFakeStore()
	merger := &fakeMerger{}
	svc := newTestService(store, merger, &syncBus{})
	tenantID, leadID := uuid.New(), uuid.New()

	_, _ = store.Create(context.Background(), "wf-enrich", leadID, tenantID)

	errMsg := "provider unreachable"
	result, err := svc.ApplyCompletion(context.Background(), CompletionInput{
		WorkflowID:   "wf-enrich",
		LeadID:       leadID,
		TenantID:     tenantID,
		Status:       domain.StatusFailed,
		ErrorMessage: &errMsg,
	})
	if err != nil {
		t.Fatalf("ApplyCompletion: %v", err)
	}
	if result.Execution.ErrorMessage == nil || *result.Execution.ErrorMessage != errMsg {
		t.Errorf("errorMessage = %v, want %q", result.Execution.ErrorMessage, errMsg)
	}
	if result.LeadMerged || merger.merges != 0 {
		t.Error("failed completion must not touch the lead")
	}
}

func TestApplyCompletionUnknownStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMerger{}, &syncBus{})
	tenantID, leadID := uuid.New(), uuid.New()

	_, _ = store.Create(context.Background(), "wf-enrich", leadID, tenantID)

	_, err := svc.ApplyCompletion(context.Background(), CompletionInput{
		WorkflowID: "wf-enrich",
		LeadID:     leadID,
		TenantID:   tenantID,
		Status:     "DONE",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown status: got %v, want validation error", err)
	}
}

func TestApplyCompletionUnknownExecution(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeMerger{}, &syncBus{})

	_, err := svc.ApplyCompletion(context.Background(), CompletionInput{
		WorkflowID: "wf-missing",
		LeadID:     uuid.New(),
		TenantID:   uuid.New(),
		Status:     domain.StatusSuccess,
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown execution: got %v, want not found", err)
	}
}
