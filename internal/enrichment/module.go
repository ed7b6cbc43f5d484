// Package enrichment module wiring. Enrichment exposes no HTTP routes of its
// own; requests arrive through the ingest pipeline and dispatch runs on the
// worker.
package enrichment

import (
	"leadflow_backend/internal/events"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the enrichment bounded context module.
type Module struct {
	service *Service
	log     *logger.Logger
}

// NewModule creates and initializes the enrichment module. Providers are
// passed in priority order; call WireQueue or WireInline before serving.
func NewModule(pool *pgxpool.Pool, leads LeadStore, providers []Provider, cfg config.EnrichmentConfig, eventBus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	orchestrator := NewOrchestrator(NewRegistry(providers...), log)
	service := NewService(repo, leads, orchestrator, cfg.GetWorkflowTimeout(), eventBus, log)

	return &Module{
		service: service,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "enrichment"
}

// Service exposes the enrichment service for cross-module wiring.
func (m *Module) Service() *Service {
	return m.service
}

// WireQueue routes dispatch through the redis-backed asynq queue.
func (m *Module) WireQueue(client *asynq.Client, queue string) {
	m.service.SetEnqueuer(NewAsynqEnqueuer(client, queue))
}

// WireInline routes dispatch through an in-process goroutine. Used when no
// redis queue is configured.
func (m *Module) WireInline() {
	m.log.Warn("redis queue unset, enrichment dispatch runs in-process")
	m.service.SetEnqueuer(NewInlineEnqueuer(m.service, m.log))
}
