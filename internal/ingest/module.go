// Package ingest module wiring.
package ingest

import (
	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ModuleConfig narrows the config surface the ingest module needs.
type ModuleConfig interface {
	config.WebhookConfig
	config.DedupConfig
}

// Module is the ingest bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	cfg     ModuleConfig
}

// NewModule creates and initializes the ingest module with all its dependencies.
// redisClient may be nil; the guard then relies on the durable record alone.
func NewModule(pool *pgxpool.Pool, redisClient *redis.Client, completions CompletionApplier, replies ReplyRecorder, enricher EnrichmentRequester, results ResultApplier, eventBus events.Bus, cfg ModuleConfig, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	guard := NewGuard(redisClient, repo, cfg.GetDedupReservationTTL(), log)
	service := NewService(guard, completions, replies, enricher, results, eventBus, log)
	handler := NewHandler(service)

	if cfg.GetWebhookSharedSecret() == "" {
		log.Warn("webhook shared secret unset, accepting unauthenticated webhooks")
	}

	return &Module{
		handler: handler,
		cfg:     cfg,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "ingest"
}

// RegisterRoutes mounts webhook routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhook")
	group.Use(SharedSecretAuth(m.cfg))
	group.POST("/automation", m.handler.HandleAutomation)
	group.POST("/replies", m.handler.HandleReplies)
	group.POST("/enrichment", m.handler.HandleEnrichment)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
