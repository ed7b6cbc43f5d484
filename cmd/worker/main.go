package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"leadflow_backend/internal/audit"
	"leadflow_backend/internal/enrichment"
	"leadflow_backend/internal/enrichment/providers"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads"
	"leadflow_backend/internal/notification"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/db"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// The worker consumes enrichment dispatch tasks from the redis queue. The
// API process enqueues; this process talks to the providers.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the worker")
	}
	log.Info("starting enrichment worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	sink := notification.NewSink(cfg, log)
	audit.NewModule(pool, sink, eventBus, log)

	leadsModule := leads.NewModule(pool, eventBus, val, log)
	enrichmentModule := enrichment.NewModule(pool, leadsModule.Service(),
		providers.FromSettings(cfg.GetProviderSettings()), cfg, eventBus, log)

	srv := asynq.NewServer(asynqRedisOpt(cfg), asynq.Config{
		Concurrency: cfg.GetAsynqConcurrency(),
		Queues:      map[string]int{cfg.GetAsynqQueueName(): 1},
	})
	mux := enrichment.NewWorkerMux(enrichmentModule.Service(), log)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Run(mux)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping worker")
		srv.Shutdown()
	case err := <-srvErr:
		if err != nil {
			log.Error("worker error", "error", err)
			panic("worker error: " + err.Error())
		}
	}
}

func asynqRedisOpt(cfg config.SchedulerConfig) asynq.RedisClientOpt {
	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return asynq.RedisClientOpt{Addr: cfg.GetRedisURL()}
	}
	if cfg.GetRedisTLSInsecure() && opts.TLSConfig != nil {
		opts.TLSConfig.InsecureSkipVerify = true
	}
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}
}
