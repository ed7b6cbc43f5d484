package ingest

import (
	"net/http"

	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles inbound webhook requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new ingest handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// WebhookResponse is the acknowledgement returned to the sender.
type WebhookResponse struct {
	Status    string `json:"status"`
	Kind      string `json:"kind"`
	Duplicate bool   `json:"duplicate"`
}

// HandleAutomation accepts automation engine callbacks.
// POST /api/v1/webhook/automation
func (h *Handler) HandleAutomation(c *gin.Context) {
	h.handle(c, SourceAutomation)
}

// HandleReplies accepts inbound reply payloads.
// POST /api/v1/webhook/replies
func (h *Handler) HandleReplies(c *gin.Context) {
	h.handle(c, SourceReplies)
}

// HandleEnrichment accepts enrichment provider callbacks.
// POST /api/v1/webhook/enrichment
func (h *Handler) HandleEnrichment(c *gin.Context) {
	h.handle(c, SourceEnrichment)
}

func (h *Handler) handle(c *gin.Context, source string) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid JSON payload", err.Error())
		return
	}

	result, err := h.service.Process(c.Request.Context(), InboundEvent{Source: source, Payload: payload})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, WebhookResponse{
		Status:    string(result.Outcome),
		Kind:      string(result.Kind),
		Duplicate: result.Duplicate,
	})
}
