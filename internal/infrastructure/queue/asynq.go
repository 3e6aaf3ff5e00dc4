package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/alejandroruanova/text-refinery/internal/pkg/config"
	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// AsynqClient wraps the Asynq client for enqueuing tasks
type AsynqClient struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewAsynqClient creates a new Asynq client
func NewAsynqClient(cfg *config.QueueConfig, logger *slog.Logger) (*AsynqClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := asynq.NewClient(redisOptions(cfg))

	logger.Info("asynq client created",
		slog.String("redis_host", cfg.RedisHost),
		slog.Int("redis_port", cfg.RedisPort),
	)

	return &AsynqClient{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Asynq client
func (a *AsynqClient) Close() error {
	a.logger.Info("closing asynq client")
	return a.client.Close()
}

// Enqueue adds a task to the queue
func (a *AsynqClient) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return a.EnqueueContext(context.Background(), task, opts...)
}

// EnqueueContext enqueues a task with context
func (a *AsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	info, err := a.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		a.logger.Error("failed to enqueue task",
			slog.String("task_type", task.Type()),
			slog.Any("error", err),
		)
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return nil, apperrors.Conflict("task is already enqueued")
		}
		return nil, apperrors.QueueError(err)
	}

	a.logger.Debug("task enqueued",
		slog.String("task_id", info.ID),
		slog.String("task_type", task.Type()),
		slog.String("queue", info.Queue),
	)

	return info, nil
}

// AsynqServer wraps the Asynq server for processing tasks
type AsynqServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// NewAsynqServer creates a new Asynq server
func NewAsynqServer(cfg *config.QueueConfig, logger *slog.Logger) (*AsynqServer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		return nil, fmt.Errorf("worker concurrency must be at least 1, got %d", cfg.Concurrency)
	}

	server := asynq.NewServer(
		redisOptions(cfg),
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			StrictPriority: cfg.StrictPriority,

			// Retry configuration
			RetryDelayFunc: retryDelay,

			// Error handler
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task processing failed",
					slog.String("task_type", task.Type()),
					slog.String("payload", string(task.Payload())),
					slog.Any("error", err),
				)
			}),

			// Health check
			HealthCheckFunc: func(e error) {
				if e != nil {
					logger.Error("health check failed", slog.Any("error", e))
				}
			},
			HealthCheckInterval: 20 * time.Second,

			// Graceful shutdown
			ShutdownTimeout: 25 * time.Second,
		},
	)

	mux := asynq.NewServeMux()

	logger.Info("asynq server created",
		slog.String("redis_host", cfg.RedisHost),
		slog.Int("redis_port", cfg.RedisPort),
		slog.Int("concurrency", cfg.Concurrency),
	)

	return &AsynqServer{
		server: server,
		mux:    mux,
		logger: logger,
	}, nil
}

// HandleFunc registers a handler function for a task type
func (a *AsynqServer) HandleFunc(pattern string, handler func(context.Context, *asynq.Task) error) {
	a.mux.HandleFunc(pattern, handler)
	a.logger.Debug("handler registered", slog.String("pattern", pattern))
}

// Use adds a middleware to the mux
func (a *AsynqServer) Use(middleware func(asynq.Handler) asynq.Handler) {
	a.mux.Use(middleware)
}

// Run processes tasks until ctx is cancelled, then shuts down gracefully
func (a *AsynqServer) Run(ctx context.Context) error {
	a.logger.Info("starting asynq server")
	if err := a.server.Start(a.mux); err != nil {
		return fmt.Errorf("failed to start asynq server: %w", err)
	}

	<-ctx.Done()
	a.Shutdown()
	return nil
}

// Shutdown gracefully shuts down the server
func (a *AsynqServer) Shutdown() {
	a.logger.Info("shutting down asynq server")
	a.server.Shutdown()
}

// Queue names, highest priority first
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

func redisOptions(cfg *config.QueueConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
}

// retryDelay backs off exponentially: 2s, 4s, 8s, ... capped at 10 minutes
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n > 9 {
		n = 9
	}
	delay := time.Duration(1<<uint(n+1)) * time.Second
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}

const maxRetryDelay = 10 * time.Minute
