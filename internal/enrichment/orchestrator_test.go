package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	leadsdomain "leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

type scriptedProvider struct {
	name      string
	available bool
	handles   func(Request) bool
	settings  config.ProviderSettings
	errs      []error
	calls     int
}

func (p *scriptedProvider) Name() string      { return p.name }
func (p *scriptedProvider) IsAvailable() bool { return p.available }

func (p *scriptedProvider) CanHandle(req Request) bool {
	if p.handles == nil {
		return true
	}
	return p.handles(req)
}

func (p *scriptedProvider) Config() config.ProviderSettings { return p.settings }

func (p *scriptedProvider) Enrich(_ context.Context, _ Request) (ProviderResult, error) {
	idx := p.calls
	p.calls++
	if idx < len(p.errs) && p.errs[idx] != nil {
		return ProviderResult{}, p.errs[idx]
	}
	company := "Acme"
	return ProviderResult{Patch: leadsdomain.FieldPatch{Company: &company}}, nil
}

func fastSettings() config.ProviderSettings {
	return config.ProviderSettings{
		RatePerSecond:    1000,
		RateBurst:        1000,
		RequestTimeout:   time.Second,
		MaxRetryAttempts: 3,
		MaxConcurrent:    4,
		RetryBackoffBase: time.Millisecond,
	}
}

func newTestOrchestrator(providers ...Provider) *Orchestrator {
	o := NewOrchestrator(NewRegistry(providers...), logger.New("development"))
	o.sleep = func(context.Context, time.Duration) error { return nil }
	return o
}

func email(s string) *string { return &s }

func TestDispatchRetriesTransientThenSucceeds(t *testing.T) {
	provider := &scriptedProvider{
		name: "apollo", available: true, settings: fastSettings(),
		errs: []error{Transient(errors.New("503")), Transient(errors.New("503")), nil},
	}
	o := newTestOrchestrator(provider)

	result, info, err := o.Dispatch(context.Background(), Request{Email: email("a@acme.com")})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if info.Attempts != 3 || provider.calls != 3 {
		t.Errorf("attempts = %d, calls = %d, want 3", info.Attempts, provider.calls)
	}
	if result.Patch.Company == nil {
		t.Error("result patch missing")
	}
}

func TestDispatchRetryBudgetIsTotalAttempts(t *testing.T) {
	boom := Transient(errors.New("503"))
	provider := &scriptedProvider{
		name: "apollo", available: true, settings: fastSettings(),
		errs: []error{boom, boom, boom, boom},
	}
	o := newTestOrchestrator(provider)

	_, info, err := o.Dispatch(context.Background(), Request{Email: email("a@acme.com")})
	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Fatalf("got %v, want ErrMaxRetriesExceeded", err)
	}
	if provider.calls != 3 {
		t.Errorf("provider called %d times, want exactly 3 (no 4th attempt)", provider.calls)
	}
	if info.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", info.Attempts)
	}
}

func TestDispatchPermanentErrorStopsImmediately(t *testing.T) {
	boom := errors.New("401 invalid key")
	provider := &scriptedProvider{
		name: "apollo", available: true, settings: fastSettings(),
		errs: []error{boom},
	}
	o := newTestOrchestrator(provider)

	_, _, err := o.Dispatch(context.Background(), Request{Email: email("a@acme.com")})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want the permanent error", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
}

func TestDispatchSelectsFirstMatchingAvailableProvider(t *testing.T) {
	unavailable := &scriptedProvider{name: "apollo", available: false, settings: fastSettings()}
	noMatch := &scriptedProvider{
		name: "hunter", available: true, settings: fastSettings(),
		handles: func(Request) bool { return false },
	}
	match := &scriptedProvider{name: "clearbit", available: true, settings: fastSettings()}
	o := newTestOrchestrator(unavailable, noMatch, match)

	_, info, err := o.Dispatch(context.Background(), Request{Email: email("a@acme.com")})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if info.Provider != "clearbit" {
		t.Errorf("provider = %s, want clearbit", info.Provider)
	}
	if unavailable.calls != 0 || noMatch.calls != 0 {
		t.Error("skipped providers must not be called")
	}
}

func TestDispatchNoProvider(t *testing.T) {
	o := newTestOrchestrator(&scriptedProvider{name: "apollo", available: false, settings: fastSettings()})

	_, _, err := o.Dispatch(context.Background(), Request{})
	if !errors.Is(err, ErrProviderNotSupported) {
		t.Fatalf("got %v, want ErrProviderNotSupported", err)
	}
}

func TestDispatchFailFastRateLimit(t *testing.T) {
	settings := fastSettings()
	settings.RatePerSecond = 1
	settings.RateBurst = 1
	provider := &scriptedProvider{name: "apollo", available: true, settings: settings}
	o := newTestOrchestrator(provider)

	if _, _, err := o.Dispatch(context.Background(), Request{Email: email("a@acme.com")}); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}

	_, _, err := o.Dispatch(context.Background(), Request{Email: email("a@acme.com")})
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("got %v, want ErrRateLimitExceeded", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
}

func TestDispatchTimeoutIsRetried(t *testing.T) {
	provider := &scriptedProvider{
		name: "apollo", available: true, settings: fastSettings(),
		errs: []error{context.DeadlineExceeded, nil},
	}
	o := newTestOrchestrator(provider)

	_, info, err := o.Dispatch(context.Background(), Request{Email: email("a@acme.com")})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if info.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", info.Attempts)
	}
}
