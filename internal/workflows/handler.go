package workflows

import (
	"net/http"
	"time"

	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes read-only execution lookups for operators. Completions
// themselves arrive through the ingest webhooks, never through this surface.
type Handler struct {
	service *Service
}

// NewHandler creates a new workflows handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ExecutionResponse is the API representation of a workflow execution.
type ExecutionResponse struct {
	ID           uuid.UUID  `json:"id"`
	WorkflowID   string     `json:"workflowId"`
	LeadID       uuid.UUID  `json:"leadId"`
	Status       string     `json:"status"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	DurationMs   *int64     `json:"durationMs,omitempty"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
}

// HandleGetExecution returns the most recent execution for a workflow/lead pair.
// GET /api/v1/workflows/:workflowId/executions?leadId=...
func (h *Handler) HandleGetExecution(c *gin.Context) {
	tenantID, ok := httpkit.GetTenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "no tenant context", nil)
		return
	}

	workflowID := c.Param("workflowId")
	leadID, err := uuid.Parse(c.Query("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid or missing leadId", nil)
		return
	}

	exec, err := h.service.GetExecution(c.Request.Context(), workflowID, leadID, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toExecutionResponse(exec))
}

func toExecutionResponse(exec Execution) ExecutionResponse {
	return ExecutionResponse{
		ID:           exec.ID,
		WorkflowID:   exec.WorkflowID,
		LeadID:       exec.LeadID,
		Status:       string(exec.Status),
		StartTime:    exec.StartTime,
		EndTime:      exec.EndTime,
		DurationMs:   exec.DurationMs,
		ErrorMessage: exec.ErrorMessage,
	}
}
