package leads

import (
	"net/http"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles lead HTTP requests.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates a new leads handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// CreateLeadRequest is the request body for creating a lead.
type CreateLeadRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

// LeadResponse is the API representation of a lead.
type LeadResponse struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenantId"`
	Name          string    `json:"name"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Company       *string   `json:"company,omitempty"`
	JobTitle      *string   `json:"jobTitle,omitempty"`
	Industry      *string   `json:"industry,omitempty"`
	CompanySize   *int      `json:"companySize,omitempty"`
	EmailVerified *bool     `json:"emailVerified,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HandleCreate stores a new lead.
// POST /api/v1/leads
func (h *Handler) HandleCreate(c *gin.Context) {
	tenantID, ok := httpkit.GetTenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "no tenant context", nil)
		return
	}

	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	lead, err := h.service.Create(c.Request.Context(), tenantID, req.Name, req.Email, req.Phone)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, toResponse(lead))
}

// HandleGet returns a single lead.
// GET /api/v1/leads/:leadId
func (h *Handler) HandleGet(c *gin.Context) {
	tenantID, ok := httpkit.GetTenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusForbidden, "no tenant context", nil)
		return
	}

	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return
	}

	lead, err := h.service.Get(c.Request.Context(), leadID, tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(lead))
}

func toResponse(lead domain.Lead) LeadResponse {
	return LeadResponse{
		ID:            lead.ID,
		TenantID:      lead.TenantID,
		Name:          lead.Name,
		Email:         lead.Email,
		Phone:         lead.Phone,
		Company:       lead.Company,
		JobTitle:      lead.JobTitle,
		Industry:      lead.Industry,
		CompanySize:   lead.CompanySize,
		EmailVerified: lead.EmailVerified,
		CreatedAt:     lead.CreatedAt,
		UpdatedAt:     lead.UpdatedAt,
	}
}
