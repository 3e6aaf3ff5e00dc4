package repositories

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alejandroruanova/text-refinery/internal/core/domain"
	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// CleanRunRepository persists cleaning runs using GORM
type CleanRunRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// ListOptions filters ListRuns
type ListOptions struct {
	Status string
	Limit  int
}

// NewCleanRunRepository creates a new repository instance
func NewCleanRunRepository(db *gorm.DB, logger *slog.Logger) *CleanRunRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &CleanRunRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a run; a zero ID is filled in
func (r *CleanRunRepository) Create(ctx context.Context, run *domain.CleanRun) error {
	if run.Status == "" {
		run.Status = domain.RunStatusQueued
	}

	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		r.logger.Error("failed to create clean run",
			slog.String("source_file", run.SourceFile),
			slog.Any("error", err))
		return apperrors.DatabaseError(err)
	}

	r.logger.Debug("clean run created",
		slog.String("run_id", run.ID.String()),
		slog.String("status", run.Status))

	return nil
}

// Get loads a run by ID
func (r *CleanRunRepository) Get(ctx context.Context, id uuid.UUID) (*domain.CleanRun, error) {
	var run domain.CleanRun

	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.RecordNotFound("clean run " + id.String())
	}
	if err != nil {
		r.logger.Error("failed to get clean run",
			slog.String("run_id", id.String()),
			slog.Any("error", err))
		return nil, apperrors.DatabaseError(err)
	}

	return &run, nil
}

// List returns runs newest first
func (r *CleanRunRepository) List(ctx context.Context, opts ListOptions) ([]domain.CleanRun, error) {
	var runs []domain.CleanRun

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	if err := query.Find(&runs).Error; err != nil {
		r.logger.Error("failed to list clean runs", slog.Any("error", err))
		return nil, apperrors.DatabaseError(err)
	}

	return runs, nil
}

// MarkRunning moves a run to running and records what it is processing
func (r *CleanRunRepository) MarkRunning(ctx context.Context, id uuid.UUID, fileHash, refineryVersion string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":           domain.RunStatusRunning,
		"file_hash":        fileHash,
		"refinery_version": refineryVersion,
		"error":            "",
		"completed_at":     nil,
	})
}

// MarkCompleted records a successful run
func (r *CleanRunRepository) MarkCompleted(ctx context.Context, id uuid.UUID, totalRows, skippedRows int, outputPath string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":       domain.RunStatusCompleted,
		"total_rows":   totalRows,
		"skipped_rows": skippedRows,
		"output_path":  outputPath,
		"completed_at": time.Now().UTC(),
	})
}

// MarkFailed records a failed run with its reason
func (r *CleanRunRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":       domain.RunStatusFailed,
		"error":        reason,
		"completed_at": time.Now().UTC(),
	})
}

func (r *CleanRunRepository) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&domain.CleanRun{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		r.logger.Error("failed to update clean run",
			slog.String("run_id", id.String()),
			slog.Any("error", result.Error))
		return apperrors.DatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.RecordNotFound("clean run " + id.String())
	}

	r.logger.Debug("clean run updated",
		slog.String("run_id", id.String()),
		slog.Any("status", fields["status"]))

	return nil
}
