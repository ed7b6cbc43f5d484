package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"leadflow_backend/internal/enrichment"
	leadsdomain "leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
)

// Apollo enriches leads by email through the Apollo people-match API.
type Apollo struct {
	settings config.ProviderSettings
	client   *http.Client
}

// NewApollo creates the apollo provider.
func NewApollo(settings config.ProviderSettings) *Apollo {
	return &Apollo{
		settings: settings,
		client:   &http.Client{Timeout: settings.RequestTimeout},
	}
}

func (p *Apollo) Name() string { return p.settings.Name }

func (p *Apollo) IsAvailable() bool { return p.settings.APIKey != "" }

func (p *Apollo) CanHandle(req enrichment.Request) bool {
	return req.Email != nil && *req.Email != ""
}

func (p *Apollo) Config() config.ProviderSettings { return p.settings }

type apolloMatchResponse struct {
	Person struct {
		Name         string `json:"name"`
		Title        string `json:"title"`
		EmailStatus  string `json:"email_status"`
		Organization struct {
			Name         string `json:"name"`
			Industry     string `json:"industry"`
			NumEmployees int    `json:"estimated_num_employees"`
		} `json:"organization"`
	} `json:"person"`
}

// Enrich matches the lead by email and maps the person record onto the lead
// fields.
func (p *Apollo) Enrich(ctx context.Context, req enrichment.Request) (enrichment.ProviderResult, error) {
	body, err := json.Marshal(map[string]string{
		"api_key": p.settings.APIKey,
		"email":   *req.Email,
	})
	if err != nil {
		return enrichment.ProviderResult{}, fmt.Errorf("marshaling apollo request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.settings.BaseURL+"/people/match", bytes.NewReader(body))
	if err != nil {
		return enrichment.ProviderResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var parsed apolloMatchResponse
	if err := doRequest(p.client, httpReq, &parsed); err != nil {
		return enrichment.ProviderResult{}, err
	}

	patch := leadsdomain.FieldPatch{}
	if parsed.Person.Title != "" {
		patch.JobTitle = &parsed.Person.Title
	}
	if parsed.Person.Organization.Name != "" {
		patch.Company = &parsed.Person.Organization.Name
	}
	if parsed.Person.Organization.Industry != "" {
		patch.Industry = &parsed.Person.Organization.Industry
	}
	if parsed.Person.Organization.NumEmployees > 0 {
		size := parsed.Person.Organization.NumEmployees
		patch.CompanySize = &size
	}
	if parsed.Person.EmailStatus != "" {
		verified := parsed.Person.EmailStatus == "verified"
		patch.EmailVerified = &verified
	}

	return enrichment.ProviderResult{Patch: patch}, nil
}
