package providers

import (
	"context"
	"net/http"
	"net/url"

	"leadflow_backend/internal/enrichment"
	leadsdomain "leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
)

// Clearbit enriches leads by email or LinkedIn profile through the Clearbit
// person API.
type Clearbit struct {
	settings config.ProviderSettings
	client   *http.Client
}

// NewClearbit creates the clearbit provider.
func NewClearbit(settings config.ProviderSettings) *Clearbit {
	return &Clearbit{
		settings: settings,
		client:   &http.Client{Timeout: settings.RequestTimeout},
	}
}

func (p *Clearbit) Name() string { return p.settings.Name }

func (p *Clearbit) IsAvailable() bool { return p.settings.APIKey != "" }

func (p *Clearbit) CanHandle(req enrichment.Request) bool {
	hasEmail := req.Email != nil && *req.Email != ""
	hasLinkedIn := req.LinkedInURL != nil && *req.LinkedInURL != ""
	return hasEmail || hasLinkedIn
}

func (p *Clearbit) Config() config.ProviderSettings { return p.settings }

type clearbitPersonResponse struct {
	Name struct {
		FullName string `json:"fullName"`
	} `json:"name"`
	Employment struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	} `json:"employment"`
}

// Enrich looks the person up by email, falling back to the LinkedIn handle.
func (p *Clearbit) Enrich(ctx context.Context, req enrichment.Request) (enrichment.ProviderResult, error) {
	query := url.Values{}
	if req.Email != nil && *req.Email != "" {
		query.Set("email", *req.Email)
	} else {
		query.Set("linkedin", *req.LinkedInURL)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.settings.BaseURL+"/people/find?"+query.Encode(), nil)
	if err != nil {
		return enrichment.ProviderResult{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.settings.APIKey)

	var parsed clearbitPersonResponse
	if err := doRequest(p.client, httpReq, &parsed); err != nil {
		return enrichment.ProviderResult{}, err
	}

	patch := leadsdomain.FieldPatch{}
	if parsed.Name.FullName != "" {
		patch.Name = &parsed.Name.FullName
	}
	if parsed.Employment.Name != "" {
		patch.Company = &parsed.Employment.Name
	}
	if parsed.Employment.Title != "" {
		patch.JobTitle = &parsed.Employment.Title
	}

	return enrichment.ProviderResult{Patch: patch}, nil
}
