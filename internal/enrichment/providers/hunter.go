package providers

import (
	"context"
	"net/http"
	"net/url"

	"leadflow_backend/internal/enrichment"
	leadsdomain "leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
)

// Hunter verifies lead email addresses through the Hunter email-verifier API.
type Hunter struct {
	settings config.ProviderSettings
	client   *http.Client
}

// NewHunter creates the hunter provider.
func NewHunter(settings config.ProviderSettings) *Hunter {
	return &Hunter{
		settings: settings,
		client:   &http.Client{Timeout: settings.RequestTimeout},
	}
}

func (p *Hunter) Name() string { return p.settings.Name }

func (p *Hunter) IsAvailable() bool { return p.settings.APIKey != "" }

func (p *Hunter) CanHandle(req enrichment.Request) bool {
	return req.Email != nil && *req.Email != ""
}

func (p *Hunter) Config() config.ProviderSettings { return p.settings }

type hunterVerifyResponse struct {
	Data struct {
		Status   string `json:"status"`
		Company  string `json:"company"`
		Position string `json:"position"`
	} `json:"data"`
}

// Enrich verifies the lead's email and carries over company data when the
// verifier returns it.
func (p *Hunter) Enrich(ctx context.Context, req enrichment.Request) (enrichment.ProviderResult, error) {
	query := url.Values{}
	query.Set("email", *req.Email)
	query.Set("api_key", p.settings.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.settings.BaseURL+"/email-verifier?"+query.Encode(), nil)
	if err != nil {
		return enrichment.ProviderResult{}, err
	}

	var parsed hunterVerifyResponse
	if err := doRequest(p.client, httpReq, &parsed); err != nil {
		return enrichment.ProviderResult{}, err
	}

	patch := leadsdomain.FieldPatch{}
	if parsed.Data.Status != "" {
		verified := parsed.Data.Status == "valid"
		patch.EmailVerified = &verified
	}
	if parsed.Data.Company != "" {
		patch.Company = &parsed.Data.Company
	}
	if parsed.Data.Position != "" {
		patch.JobTitle = &parsed.Data.Position
	}

	return enrichment.ProviderResult{Patch: patch}, nil
}
