package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandroruanova/text-refinery/internal/core/services/cleaning"
	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

type fakeCleaner struct {
	requests []cleaning.Request
	err      error
}

func (f *fakeCleaner) CleanFile(ctx context.Context, req cleaning.Request) (*cleaning.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &cleaning.Result{RunID: req.RunID, TotalRows: 3, OutputPath: "/tmp/out.csv"}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewCleanDatasetTask(t *testing.T) {
	payload := CleanDatasetPayload{RunID: uuid.New(), FilePath: "/data/train.csv"}

	task, err := NewCleanDatasetTask(payload, 3)
	require.NoError(t, err)
	assert.Equal(t, TaskTypeCleanDataset, task.Type())

	decoded, err := ParseCleanDatasetPayload(task.Payload())
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestNewCleanDatasetTask_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload CleanDatasetPayload
	}{
		{name: "no run", payload: CleanDatasetPayload{FilePath: "a.csv"}},
		{name: "no file", payload: CleanDatasetPayload{RunID: uuid.New()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewCleanDatasetTask(tt.payload, 3)
			assert.Nil(t, task)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBadRequest))
		})
	}
}

func TestCleanDatasetHandler_Success(t *testing.T) {
	cleaner := &fakeCleaner{}
	handler := NewCleanDatasetHandler(cleaner, quietLogger())

	payload := CleanDatasetPayload{RunID: uuid.New(), FilePath: "/data/train.csv"}
	task, err := NewCleanDatasetTask(payload, 3)
	require.NoError(t, err)

	require.NoError(t, handler.ProcessTask(context.Background(), task))
	require.Len(t, cleaner.requests, 1)
	assert.Equal(t, payload.RunID, cleaner.requests[0].RunID)
	assert.Equal(t, payload.FilePath, cleaner.requests[0].FilePath)
}

func TestCleanDatasetHandler_BadPayload(t *testing.T) {
	cleaner := &fakeCleaner{}
	handler := NewCleanDatasetHandler(cleaner, quietLogger())

	for name, payload := range map[string]string{
		"not json":  "{",
		"empty run": `{"file_path": "a.csv"}`,
	} {
		t.Run(name, func(t *testing.T) {
			err := handler.ProcessTask(context.Background(), asynq.NewTask(TaskTypeCleanDataset, []byte(payload)))
			assert.ErrorIs(t, err, asynq.SkipRetry)
		})
	}
	assert.Empty(t, cleaner.requests)
}

func TestCleanDatasetHandler_Retry(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		skipRetry bool
	}{
		{name: "missing column", err: apperrors.MissingField("text", 4), skipRetry: true},
		{name: "unsupported format", err: apperrors.UnsupportedFormat(".txt"), skipRetry: true},
		{name: "unknown run", err: apperrors.RecordNotFound("clean run"), skipRetry: true},
		{name: "lock held", err: apperrors.Conflict("dataset is already being cleaned"), skipRetry: false},
		{name: "database", err: apperrors.DatabaseError(errors.New("connection reset")), skipRetry: false},
		{name: "plain error", err: errors.New("disk full"), skipRetry: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCleanDatasetHandler(&fakeCleaner{err: tt.err}, quietLogger())
			task, err := NewCleanDatasetTask(CleanDatasetPayload{RunID: uuid.New(), FilePath: "a.csv"}, 3)
			require.NoError(t, err)

			err = handler.ProcessTask(context.Background(), task)

			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	calls := 0
	next := asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		calls++
		if string(task.Payload()) == "fail" {
			return errors.New("boom")
		}
		return nil
	})

	h := LoggingMiddleware(quietLogger())(next)

	assert.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask("t", []byte("ok"))))
	assert.EqualError(t, h.ProcessTask(context.Background(), asynq.NewTask("t", []byte("fail"))), "boom")
	assert.Equal(t, 2, calls)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryDelay(0, nil, nil))
	assert.Equal(t, 8*time.Second, retryDelay(2, nil, nil))
	assert.Equal(t, maxRetryDelay, retryDelay(20, nil, nil))
}
