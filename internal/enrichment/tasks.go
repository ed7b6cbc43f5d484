package enrichment

import (
	"context"
	"encoding/json"
	"fmt"

	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskTypeDispatch is the asynq task type for enrichment dispatch.
const TaskTypeDispatch = "enrichment:dispatch"

type dispatchPayload struct {
	RequestID uuid.UUID `json:"requestId"`
}

// NewDispatchTask builds the asynq task for a queued request.
func NewDispatchTask(requestID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(dispatchPayload{RequestID: requestID})
	if err != nil {
		return nil, fmt.Errorf("marshaling dispatch payload: %w", err)
	}
	return asynq.NewTask(TaskTypeDispatch, payload), nil
}

// AsynqEnqueuer queues dispatch tasks on redis. Retries stay at zero because
// the orchestrator owns the attempt budget.
type AsynqEnqueuer struct {
	client *asynq.Client
	queue  string
}

// NewAsynqEnqueuer creates an asynq-backed enqueuer.
func NewAsynqEnqueuer(client *asynq.Client, queue string) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client, queue: queue}
}

// Enqueue queues the request for the worker.
func (e *AsynqEnqueuer) Enqueue(ctx context.Context, requestID uuid.UUID) error {
	task, err := NewDispatchTask(requestID)
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(e.queue), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueueing dispatch task: %w", err)
	}
	return nil
}

// InlineEnqueuer dispatches in a background goroutine when no redis queue is
// configured. Single-process only.
type InlineEnqueuer struct {
	service *Service
	log     *logger.Logger
}

// NewInlineEnqueuer creates the in-process fallback enqueuer.
func NewInlineEnqueuer(service *Service, log *logger.Logger) *InlineEnqueuer {
	return &InlineEnqueuer{service: service, log: log}
}

// Enqueue runs dispatch detached from the caller's request context.
func (e *InlineEnqueuer) Enqueue(_ context.Context, requestID uuid.UUID) error {
	go func() {
		if err := e.service.Dispatch(context.Background(), requestID); err != nil {
			e.log.Error("inline enrichment dispatch failed", "error", err, "requestId", requestID)
		}
	}()
	return nil
}
