// Package enrichment provides the enrichment dispatch orchestrator: provider
// selection, rate limiting, bounded retries, and request lifecycle tracking.
package enrichment

import (
	"context"
	"errors"
	"fmt"

	leadsdomain "leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"

	"github.com/google/uuid"
)

var (
	// ErrProviderNotSupported is returned when no registered provider can
	// handle the request.
	ErrProviderNotSupported = errors.New("no provider supports this request")
	// ErrRateLimitExceeded is returned when the selected provider's rate
	// limiter has no slot and the provider is configured fail-fast.
	ErrRateLimitExceeded = errors.New("provider rate limit exceeded")
	// ErrMaxRetriesExceeded is returned when every allowed attempt failed.
	ErrMaxRetriesExceeded = errors.New("max retry attempts exceeded")
)

// Request is a snapshot of the lead fields providers match and enrich on.
type Request struct {
	RequestID   uuid.UUID
	TenantID    uuid.UUID
	LeadID      uuid.UUID
	Name        string
	Email       *string
	Company     *string
	LinkedInURL *string
}

// ProviderResult is a provider's normalized answer.
type ProviderResult struct {
	Patch leadsdomain.FieldPatch
	Raw   map[string]any
}

// Provider is a single enrichment backend.
type Provider interface {
	Name() string
	// CanHandle reports whether the request carries the inputs this provider
	// needs. Pure predicate, no I/O.
	CanHandle(req Request) bool
	// IsAvailable reports whether the provider is configured and usable.
	IsAvailable() bool
	Enrich(ctx context.Context, req Request) (ProviderResult, error)
	Config() config.ProviderSettings
}

// TransientError marks a failure worth retrying: timeouts, 429s, 5xx.
// Anything else is permanent and fails the attempt loop immediately.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable.
func Transient(err error) error {
	return &TransientError{Err: err}
}

// IsTransient reports whether err should be retried. Context deadline
// expiration counts as a provider timeout and is retried within the budget.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient) || errors.Is(err, context.DeadlineExceeded)
}
