// Package campaigns provides the campaign lifecycle bounded context module.
// This file defines the module that encapsulates all campaign setup and route registration.
package campaigns

import (
	"leadflow_backend/internal/campaigns/domain"
	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the campaigns bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the campaigns module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(repo, domain.NewTransitionTable(), eventBus, log)
	handler := NewHandler(service, val)

	return &Module{
		handler: handler,
		service: service,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "campaigns"
}

// Service exposes the campaigns service for cross-module wiring.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts campaign routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	adminGroup := ctx.Admin.Group("/campaigns")
	adminGroup.POST("", m.handler.HandleCreate)
	adminGroup.GET("", m.handler.HandleList)
	adminGroup.GET("/:campaignId", m.handler.HandleGet)
	adminGroup.POST("/:campaignId/status", m.handler.HandleTransition)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
