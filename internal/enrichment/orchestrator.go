package enrichment

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/platform/logger"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DispatchInfo reports which provider handled a request and at what cost.
type DispatchInfo struct {
	Provider string
	Attempts int
}

// providerSlot pairs a provider with its rate limiter and in-flight bound.
// The two are independent: the limiter paces request starts, the semaphore
// caps concurrent requests regardless of pace.
type providerSlot struct {
	provider Provider
	limiter  *rate.Limiter
	sem      *semaphore.Weighted
}

// Orchestrator routes enrichment requests to providers and enforces each
// provider's dispatch policy.
type Orchestrator struct {
	registry *Registry
	slots    map[string]*providerSlot
	log      *logger.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an orchestrator over the registry's providers.
func NewOrchestrator(registry *Registry, log *logger.Logger) *Orchestrator {
	slots := make(map[string]*providerSlot, len(registry.Providers()))
	for _, provider := range registry.Providers() {
		settings := provider.Config()
		slots[provider.Name()] = &providerSlot{
			provider: provider,
			limiter:  rate.NewLimiter(rate.Limit(settings.RatePerSecond), settings.RateBurst),
			sem:      semaphore.NewWeighted(settings.MaxConcurrent),
		}
	}
	return &Orchestrator{
		registry: registry,
		slots:    slots,
		log:      log,
		sleep:    sleepCtx,
	}
}

// Dispatch selects a provider and runs the attempt loop. Transient failures
// are retried with linear backoff until the provider's attempt budget is
// spent; permanent failures stop immediately.
func (o *Orchestrator) Dispatch(ctx context.Context, req Request) (ProviderResult, DispatchInfo, error) {
	provider, ok := o.registry.Select(req)
	if !ok {
		return ProviderResult{}, DispatchInfo{}, ErrProviderNotSupported
	}

	slot := o.slots[provider.Name()]
	settings := provider.Config()
	info := DispatchInfo{Provider: provider.Name()}

	if settings.WaitForRateSlot {
		if err := slot.limiter.Wait(ctx); err != nil {
			return ProviderResult{}, info, fmt.Errorf("waiting for rate slot: %w", err)
		}
	} else if !slot.limiter.Allow() {
		o.log.RateLimitExceeded(provider.Name(), "enrichment_dispatch")
		return ProviderResult{}, info, ErrRateLimitExceeded
	}

	if err := slot.sem.Acquire(ctx, 1); err != nil {
		return ProviderResult{}, info, fmt.Errorf("acquiring concurrency slot: %w", err)
	}
	defer slot.sem.Release(1)

	var lastErr error
	for attempt := 1; attempt <= settings.MaxRetryAttempts; attempt++ {
		info.Attempts = attempt

		attemptCtx, cancel := context.WithTimeout(ctx, settings.RequestTimeout)
		result, err := provider.Enrich(attemptCtx, req)
		cancel()

		o.log.EnrichmentAttempt(provider.Name(), attempt, err)
		if err == nil {
			return result, info, nil
		}
		if !IsTransient(err) {
			return ProviderResult{}, info, err
		}

		lastErr = err
		if attempt < settings.MaxRetryAttempts {
			backoff := settings.RetryBackoffBase * time.Duration(attempt)
			if err := o.sleep(ctx, backoff); err != nil {
				return ProviderResult{}, info, err
			}
		}
	}

	return ProviderResult{}, info, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, info.Attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
