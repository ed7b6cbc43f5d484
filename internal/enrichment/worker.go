package enrichment

import (
	"context"
	"encoding/json"
	"fmt"

	"leadflow_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// NewWorkerMux registers the enrichment task handlers on an asynq mux.
func NewWorkerMux(service *Service, log *logger.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeDispatch, func(ctx context.Context, task *asynq.Task) error {
		var payload dispatchPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshaling dispatch payload: %w", err)
		}
		log.Info("dispatching enrichment request", "requestId", payload.RequestID)
		return service.Dispatch(ctx, payload.RequestID)
	})
	return mux
}
