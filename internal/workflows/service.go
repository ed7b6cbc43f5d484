package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadflow_backend/internal/events"
	leadsdomain "leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/workflows/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the data access surface the service needs. Satisfied by *Repository.
type Store interface {
	Create(ctx context.Context, workflowID string, leadID, tenantID uuid.UUID) (Execution, error)
	GetByWorkflowAndLead(ctx context.Context, workflowID string, leadID, tenantID uuid.UUID) (Execution, error)
	Complete(ctx context.Context, exec Execution) error
}

// LeadMerger merges enriched fields into a lead. Satisfied by leads.Service.
type LeadMerger interface {
	MergeEnrichedFields(ctx context.Context, leadID, tenantID uuid.UUID, patch leadsdomain.FieldPatch) (bool, error)
}

// CompletionInput carries a classified workflow completion signal.
type CompletionInput struct {
	WorkflowID   string
	LeadID       uuid.UUID
	TenantID     uuid.UUID
	Status       domain.Status
	OutputData   map[string]any
	ErrorMessage *string
}

// CompletionResult reports what the completion changed.
type CompletionResult struct {
	Execution  Execution
	Applied    bool
	LeadMerged bool
}

// Service validates and applies workflow execution transitions.
// Policy is "reject, don't coerce" with one exception: a completion for an
// execution already in a terminal state is a duplicate-style no-op, guarding
// against redeliveries the idempotency key derivation missed.
type Service struct {
	store      Store
	table      *domain.TransitionTable
	leadMerger LeadMerger
	bus        events.Bus
	log        *logger.Logger
	now        func() time.Time
}

// NewService creates a new workflows service.
func NewService(store Store, table *domain.TransitionTable, leadMerger LeadMerger, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:      store,
		table:      table,
		leadMerger: leadMerger,
		bus:        bus,
		log:        log,
		now:        time.Now,
	}
}

// StartExecution records a new STARTED execution for the pair.
func (s *Service) StartExecution(ctx context.Context, workflowID string, leadID, tenantID uuid.UUID) (Execution, error) {
	return s.store.Create(ctx, workflowID, leadID, tenantID)
}

// GetExecution returns the most recent execution for a workflow/lead pair.
func (s *Service) GetExecution(ctx context.Context, workflowID string, leadID, tenantID uuid.UUID) (Execution, error) {
	exec, err := s.store.GetByWorkflowAndLead(ctx, workflowID, leadID, tenantID)
	if errors.Is(err, ErrExecutionNotFound) {
		return Execution{}, apperr.NotFound("workflow execution not found").WithOp("workflows.GetExecution")
	}
	return exec, err
}

// ApplyCompletion applies a completion signal to the execution identified by
// (workflowId, leadId). On success with output data, the lead record is
// merged with the non-null incoming fields. On failure, only the execution's
// error message is set; the lead is untouched.
func (s *Service) ApplyCompletion(ctx context.Context, input CompletionInput) (CompletionResult, error) {
	exec, err := s.store.GetByWorkflowAndLead(ctx, input.WorkflowID, input.LeadID, input.TenantID)
	if errors.Is(err, ErrExecutionNotFound) {
		return CompletionResult{}, apperr.NotFound("workflow execution not found").WithOp("workflows.ApplyCompletion")
	}
	if err != nil {
		return CompletionResult{}, err
	}

	if !s.table.IsKnown(input.Status) {
		return CompletionResult{}, apperr.Validation(fmt.Sprintf("unknown execution status %q", input.Status)).
			WithOp("workflows.ApplyCompletion")
	}

	if s.table.IsTerminal(exec.Status) {
		s.log.Debug("completion for terminal execution ignored",
			"executionId", exec.ID, "status", exec.Status, "target", input.Status)
		return CompletionResult{Execution: exec}, nil
	}

	if !s.table.CanTransition(exec.Status, input.Status) {
		reason := fmt.Sprintf("illegal transition %s -> %s", exec.Status, input.Status)
		s.log.TransitionRejected("workflow_execution", exec.ID.String(), string(exec.Status), string(input.Status))
		s.bus.Publish(ctx, events.WorkflowCompletionRejected{
			BaseEvent:   events.NewBaseEvent(),
			TenantID:    input.TenantID,
			ExecutionID: exec.ID,
			WorkflowID:  input.WorkflowID,
			LeadID:      input.LeadID,
			From:        string(exec.Status),
			Target:      string(input.Status),
			Reason:      reason,
		})
		return CompletionResult{}, apperr.Conflict(reason).WithOp("workflows.ApplyCompletion")
	}

	updated := exec
	updated.Status = input.Status
	if s.table.IsTerminal(input.Status) {
		endTime := s.now().UTC()
		durationMs := endTime.Sub(exec.StartTime).Milliseconds()
		updated.EndTime = &endTime
		updated.DurationMs = &durationMs
	}
	if input.Status == domain.StatusSuccess && input.OutputData != nil {
		if raw, err := json.Marshal(input.OutputData); err == nil {
			updated.OutputData = raw
		}
	}
	if input.Status != domain.StatusSuccess {
		updated.ErrorMessage = input.ErrorMessage
	}

	if err := s.store.Complete(ctx, updated); err != nil {
		if errors.Is(err, ErrStaleExecution) {
			return s.resolveStaleCompletion(ctx, input)
		}
		return CompletionResult{}, err
	}

	result := CompletionResult{Execution: updated, Applied: true}

	if input.Status == domain.StatusSuccess {
		merged, err := s.mergeLead(ctx, input)
		if err != nil {
			// The execution transition already committed; a merge failure is
			// logged rather than unwinding the terminal record.
			s.log.Error("lead merge after workflow success failed",
				"error", err, "leadId", input.LeadID, "workflowId", input.WorkflowID)
		}
		result.LeadMerged = merged
	}

	s.bus.Publish(ctx, events.WorkflowCompletionApplied{
		BaseEvent:   events.NewBaseEvent(),
		TenantID:    input.TenantID,
		ExecutionID: updated.ID,
		WorkflowID:  input.WorkflowID,
		LeadID:      input.LeadID,
		Status:      string(input.Status),
		LeadMerged:  result.LeadMerged,
	})

	return result, nil
}

// resolveStaleCompletion re-reads after a lost version race. If the other
// writer moved the execution into a terminal state, this completion is a
// duplicate-style no-op; otherwise the caller should retry.
func (s *Service) resolveStaleCompletion(ctx context.Context, input CompletionInput) (CompletionResult, error) {
	exec, err := s.store.GetByWorkflowAndLead(ctx, input.WorkflowID, input.LeadID, input.TenantID)
	if err != nil {
		return CompletionResult{}, err
	}
	if s.table.IsTerminal(exec.Status) {
		return CompletionResult{Execution: exec}, nil
	}
	return CompletionResult{}, apperr.Conflict("execution was updated concurrently").
		WithOp("workflows.ApplyCompletion")
}

func (s *Service) mergeLead(ctx context.Context, input CompletionInput) (bool, error) {
	patch := leadsdomain.PatchFromMap(input.OutputData)
	if patch.IsEmpty() {
		return false, nil
	}
	return s.leadMerger.MergeEnrichedFields(ctx, input.LeadID, input.TenantID, patch)
}
