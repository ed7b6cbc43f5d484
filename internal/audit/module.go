// Package audit module wiring.
package audit

import (
	"leadflow_backend/internal/events"
	"leadflow_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the audit bounded context module. It has no HTTP surface; it
// exists entirely as a bus subscriber.
type Module struct {
	recorder *Recorder
}

// NewModule creates the audit module and subscribes it on the bus.
func NewModule(pool *pgxpool.Pool, notifier Notifier, eventBus events.Bus, log *logger.Logger) *Module {
	recorder := NewRecorder(NewRepository(pool), notifier, log)
	recorder.Subscribe(eventBus)
	return &Module{recorder: recorder}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}
