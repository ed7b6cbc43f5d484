// Package workflows module wiring.
package workflows

import (
	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/workflows/domain"
	"leadflow_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the workflows bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the workflows module with all its dependencies.
func NewModule(pool *pgxpool.Pool, leadMerger LeadMerger, eventBus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, domain.NewTransitionTable(), leadMerger, eventBus, log)
	handler := NewHandler(service)

	return &Module{
		handler: handler,
		service: service,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "workflows"
}

// Service exposes the workflows service for cross-module wiring.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts workflow routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/workflows")
	group.GET("/:workflowId/executions", m.handler.HandleGetExecution)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
