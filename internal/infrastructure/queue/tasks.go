package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/alejandroruanova/text-refinery/internal/core/services/cleaning"
	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// TaskTypeCleanDataset cleans one stored dataset file
const TaskTypeCleanDataset = "clean:dataset"

// CleanDatasetPayload is the task payload for TaskTypeCleanDataset
type CleanDatasetPayload struct {
	RunID    uuid.UUID `json:"run_id"`
	FilePath string    `json:"file_path"`
}

// Validate checks the payload names a run and a file
func (p CleanDatasetPayload) Validate() error {
	if p.RunID == uuid.Nil {
		return apperrors.BadRequest("run_id is required")
	}
	if p.FilePath == "" {
		return apperrors.BadRequest("file_path is required")
	}
	return nil
}

// NewCleanDatasetTask builds a clean task. The task ID is the run ID, so a run
// is never enqueued twice.
func NewCleanDatasetTask(payload CleanDatasetPayload, maxRetry int) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal clean task payload: %w", err)
	}

	return asynq.NewTask(TaskTypeCleanDataset, data,
		asynq.TaskID(payload.RunID.String()),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(time.Hour),
	), nil
}

// ParseCleanDatasetPayload decodes and validates a task payload
func ParseCleanDatasetPayload(data []byte) (CleanDatasetPayload, error) {
	var payload CleanDatasetPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("invalid clean task payload: %w", err)
	}
	return payload, payload.Validate()
}

// Cleaner runs one cleaning request
type Cleaner interface {
	CleanFile(ctx context.Context, req cleaning.Request) (*cleaning.Result, error)
}

// CleanDatasetHandler processes TaskTypeCleanDataset tasks
type CleanDatasetHandler struct {
	cleaner Cleaner
	logger  *slog.Logger
}

// NewCleanDatasetHandler creates the handler
func NewCleanDatasetHandler(cleaner Cleaner, logger *slog.Logger) *CleanDatasetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanDatasetHandler{cleaner: cleaner, logger: logger}
}

// ProcessTask implements asynq.Handler. Errors that retrying cannot fix are
// wrapped with asynq.SkipRetry.
func (h *CleanDatasetHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCleanDatasetPayload(task.Payload())
	if err != nil {
		h.logger.Error("dropping clean task", slog.Any("error", err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	logger := h.logger.With(slog.String("run_id", payload.RunID.String()))
	logger.Info("processing clean task", slog.String("file", payload.FilePath))

	result, err := h.cleaner.CleanFile(ctx, cleaning.Request{
		RunID:    payload.RunID,
		FilePath: payload.FilePath,
	})
	if err != nil {
		if !retryable(err) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	logger.Info("clean task completed",
		slog.Int("total_rows", result.TotalRows),
		slog.String("output", result.OutputPath))
	return nil
}

// retryable reports whether a later attempt could succeed. Bad input stays bad;
// lock conflicts, database and storage trouble may clear.
func retryable(err error) bool {
	appErr, ok := apperrors.GetAppError(err)
	if !ok {
		return true
	}

	switch appErr.Code {
	case apperrors.ErrCodeBadRequest,
		apperrors.ErrCodeRecordNotFound,
		apperrors.ErrCodeMissingField,
		apperrors.ErrCodeInvalidFieldType,
		apperrors.ErrCodeInvalidFile,
		apperrors.ErrCodeUnsupportedFormat,
		apperrors.ErrCodeFileParseError:
		return false
	}
	return true
}

// LoggingMiddleware logs the duration and outcome of every task
func LoggingMiddleware(logger *slog.Logger) func(asynq.Handler) asynq.Handler {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			start := time.Now()
			err := next.ProcessTask(ctx, task)

			attrs := []any{
				slog.String("task_type", task.Type()),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("task finished with error", append(attrs, slog.Any("error", err))...)
				return err
			}
			logger.Debug("task finished", attrs...)
			return nil
		})
	}
}
