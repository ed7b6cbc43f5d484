// Package workflows provides the workflow execution bounded context: the
// lifecycle of executions reported by the external automation engine.
package workflows

import (
	"context"
	"errors"
	"time"

	"leadflow_backend/internal/workflows/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrExecutionNotFound is returned when an execution is unknown to the tenant.
	ErrExecutionNotFound = errors.New("workflow execution not found")
	// ErrStaleExecution is returned when a versioned update lost a concurrent race.
	ErrStaleExecution = errors.New("stale workflow execution")
)

// Execution is a tenant-scoped workflow execution record. Once the status is
// terminal the record is immutable.
type Execution struct {
	ID           uuid.UUID
	WorkflowID   string
	LeadID       uuid.UUID
	TenantID     uuid.UUID
	Status       domain.Status
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int64
	OutputData   []byte
	ErrorMessage *string
	Version      int
}

// Repository provides data access for workflow executions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new workflows repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new execution in STARTED status.
func (r *Repository) Create(ctx context.Context, workflowID string, leadID, tenantID uuid.UUID) (Execution, error) {
	var exec Execution
	err := r.pool.QueryRow(ctx, `
		INSERT INTO workflow_executions (workflow_id, lead_id, tenant_id, status, start_time)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, workflow_id, lead_id, tenant_id, status, start_time,
		          end_time, duration_ms, output_data, error_message, version
	`, workflowID, leadID, tenantID, domain.StatusStarted).Scan(
		&exec.ID, &exec.WorkflowID, &exec.LeadID, &exec.TenantID, &exec.Status,
		&exec.StartTime, &exec.EndTime, &exec.DurationMs, &exec.OutputData,
		&exec.ErrorMessage, &exec.Version,
	)
	return exec, err
}

// GetByWorkflowAndLead retrieves the most recent execution for the
// (workflowId, leadId) pair, scoped to the tenant.
func (r *Repository) GetByWorkflowAndLead(ctx context.Context, workflowID string, leadID, tenantID uuid.UUID) (Execution, error) {
	var exec Execution
	err := r.pool.QueryRow(ctx, `
		SELECT id, workflow_id, lead_id, tenant_id, status, start_time,
		       end_time, duration_ms, output_data, error_message, version
		FROM workflow_executions
		WHERE workflow_id = $1 AND lead_id = $2 AND tenant_id = $3
		ORDER BY start_time DESC
		LIMIT 1
	`, workflowID, leadID, tenantID).Scan(
		&exec.ID, &exec.WorkflowID, &exec.LeadID, &exec.TenantID, &exec.Status,
		&exec.StartTime, &exec.EndTime, &exec.DurationMs, &exec.OutputData,
		&exec.ErrorMessage, &exec.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Execution{}, ErrExecutionNotFound
	}
	return exec, err
}

// Complete persists the execution's terminal fields using the version column
// as a compare-and-swap guard. Returns ErrStaleExecution when a concurrent
// update won the race.
func (r *Repository) Complete(ctx context.Context, exec Execution) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE workflow_executions
		SET status = $1, end_time = $2, duration_ms = $3, output_data = $4,
		    error_message = $5, version = version + 1
		WHERE id = $6 AND tenant_id = $7 AND version = $8
	`, exec.Status, exec.EndTime, exec.DurationMs, exec.OutputData,
		exec.ErrorMessage, exec.ID, exec.TenantID, exec.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleExecution
	}
	return nil
}
