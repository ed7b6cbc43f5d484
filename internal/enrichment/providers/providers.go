// Package providers contains the concrete enrichment backends. Each provider
// wraps one vendor API and normalizes its answer into a lead field patch.
package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"leadflow_backend/internal/enrichment"
	"leadflow_backend/platform/config"
)

// FromSettings builds the provider set in the priority order the settings
// list them. Unknown names are skipped.
func FromSettings(settings []config.ProviderSettings) []enrichment.Provider {
	result := make([]enrichment.Provider, 0, len(settings))
	for _, s := range settings {
		switch s.Name {
		case "apollo":
			result = append(result, NewApollo(s))
		case "hunter":
			result = append(result, NewHunter(s))
		case "clearbit":
			result = append(result, NewClearbit(s))
		}
	}
	return result
}

// decodeResponse classifies the HTTP status and decodes the body. Rate
// limiting and server errors are transient; other non-2xx answers are
// permanent.
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return enrichment.Transient(fmt.Errorf("provider returned %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding provider response: %w", err)
	}
	return nil
}

func doRequest(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		// Network failures and context timeouts are worth another attempt.
		return enrichment.Transient(err)
	}
	return decodeResponse(resp, out)
}
