package campaigns

import (
	"net/http"

	"leadflow_backend/internal/campaigns/domain"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles campaign HTTP requests.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new campaigns handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// CreateCampaignRequest is the request body for creating a campaign.
type CreateCampaignRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// TransitionRequest is the request body for a status transition.
type TransitionRequest struct {
	Target string `json:"target" validate:"required"`
}

// CampaignResponse is the API representation of a campaign.
type CampaignResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	TenantID uuid.UUID `json:"tenantId"`
}

// HandleCreate creates a campaign in DRAFT status.
// POST /api/v1/admin/campaigns
func (h *Handler) HandleCreate(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	var req CreateCampaignRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	campaign, err := h.service.Create(c.Request.Context(), tenantID, req.Name)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, toResponse(campaign))
}

// HandleList lists campaigns for the tenant.
// GET /api/v1/admin/campaigns
func (h *Handler) HandleList(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	campaigns, err := h.service.List(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		result[i] = toResponse(campaign)
	}
	httpkit.OK(c, result)
}

// HandleGet returns a single campaign.
// GET /api/v1/admin/campaigns/:campaignId
func (h *Handler) HandleGet(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	campaignID, ok := h.parseCampaignID(c)
	if !ok {
		return
	}

	campaign, err := h.service.Get(c.Request.Context(), campaignID, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(campaign))
}

// HandleTransition applies a lifecycle transition.
// POST /api/v1/admin/campaigns/:campaignId/status
func (h *Handler) HandleTransition(c *gin.Context) {
	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	campaignID, ok := h.parseCampaignID(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	campaign, err := h.service.ApplyTransition(c.Request.Context(), campaignID, tenantID, domain.Status(req.Target))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(campaign))
}

func toResponse(campaign Campaign) CampaignResponse {
	return CampaignResponse{
		ID:       campaign.ID,
		Name:     campaign.Name,
		Status:   string(campaign.Status),
		TenantID: campaign.TenantID,
	}
}

func (h *Handler) getTenantID(c *gin.Context) (uuid.UUID, bool) {
	tenantID, ok := httpkit.GetTenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "no tenant context", nil)
		return uuid.UUID{}, false
	}
	return tenantID, true
}

func (h *Handler) parseCampaignID(c *gin.Context) (uuid.UUID, bool) {
	campaignID, err := uuid.Parse(c.Param("campaignId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid campaign ID", nil)
		return uuid.UUID{}, false
	}
	return campaignID, true
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return false
	}
	return true
}
