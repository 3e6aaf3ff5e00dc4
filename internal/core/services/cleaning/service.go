package cleaning

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alejandroruanova/text-refinery/internal/core/domain"
	"github.com/alejandroruanova/text-refinery/internal/core/services/deduplication"
	"github.com/alejandroruanova/text-refinery/internal/core/services/refinery"
	"github.com/alejandroruanova/text-refinery/internal/core/services/transformer"
	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// kindCleaned is the processed-file kind cleaned datasets are stored under
const kindCleaned = "cleaned"

// Dependencies wires the service. Runs and Locker are optional; without them
// the service neither records runs nor guards against concurrent cleaning.
type Dependencies struct {
	Pipeline *refinery.Pipeline
	Parser   Parser
	Files    FileStore
	Runs     RunRepository
	Locker   Locker
}

// Service cleans dataset files end to end
type Service struct {
	config Config
	deps   Dependencies
	dedup  *deduplication.Service
	logger *slog.Logger
}

// NewService creates a new cleaning service
func NewService(config Config, deps Dependencies, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Pipeline == nil || deps.Parser == nil || deps.Files == nil {
		return nil, apperrors.Internal("cleaning service requires a pipeline, a parser and a file store")
	}

	defaults := DefaultConfig()
	if config.TextColumn == "" {
		config.TextColumn = defaults.TextColumn
	}
	if config.OutputColumn == "" {
		config.OutputColumn = defaults.OutputColumn
	}
	if config.Workers < 1 {
		config.Workers = defaults.Workers
	}
	if config.LockRefresh <= 0 {
		config.LockRefresh = defaults.LockRefresh
	}

	return &Service{
		config: config,
		deps:   deps,
		dedup:  deduplication.NewService(deduplication.DefaultConfig(), logger),
		logger: logger,
	}, nil
}

// Config returns the effective configuration
func (s *Service) Config() Config {
	return s.config
}

// CleanFile parses a dataset, cleans its text column and writes the dataset
// back out as CSV with the cleaned column appended
func (s *Service) CleanFile(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()

	if strings.TrimSpace(req.FilePath) == "" {
		return nil, apperrors.BadRequest("file path is required")
	}

	fileHash, err := s.deps.Files.HashFile(ctx, req.FilePath)
	if err != nil {
		return nil, err
	}

	if s.deps.Locker != nil {
		lockCtx, release, err := s.holdLock(ctx, LockKeyPrefix+fileHash)
		if err != nil {
			s.logger.Warn("dataset lock not acquired",
				slog.String("file", req.FilePath),
				slog.String("file_hash", fileHash),
				slog.Any("error", err))
			return nil, err
		}
		defer release()
		ctx = lockCtx
	}

	runID, err := s.startRun(ctx, req, fileHash)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(slog.String("run_id", runID.String()))
	logger.Info("starting dataset cleaning",
		slog.String("file", req.FilePath),
		slog.String("file_hash", fileHash),
		slog.String("refinery_version", s.deps.Pipeline.GetVersion()),
		slog.String("text_column", s.config.TextColumn))

	result, err := s.process(ctx, runID, req)
	if lost := lockLost(ctx); lost != nil {
		err = lost
	}
	if err != nil {
		logger.Error("dataset cleaning failed", slog.Any("error", err))
		s.failRun(ctx, runID, err)
		return nil, err
	}

	result.RunID = runID
	result.FileHash = fileHash
	result.RefineryVersion = s.deps.Pipeline.GetVersion()
	result.Duration = time.Since(startTime)

	if s.deps.Runs != nil {
		if err := s.deps.Runs.MarkCompleted(ctx, runID, result.TotalRows, result.SkippedRows, result.OutputPath); err != nil {
			return nil, fmt.Errorf("failed to record completed run: %w", err)
		}
	}

	logger.Info("dataset cleaning completed",
		slog.Int("total_rows", result.TotalRows),
		slog.Int("cleaned_rows", result.CleanedRows),
		slog.Int("empty_outputs", result.EmptyOutputs),
		slog.Int("duplicate_rows", result.DuplicateRows),
		slog.String("output", result.OutputPath),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// holdLock acquires key and extends it every LockRefresh until release is
// called. The returned context is cancelled if the lock is lost.
func (s *Service) holdLock(ctx context.Context, key string) (context.Context, func(), error) {
	token, err := s.deps.Locker.Acquire(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	lockCtx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.keepLock(lockCtx, cancel, key, token)
	}()

	release := func() {
		cancel(nil)
		<-done
		if err := s.deps.Locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Error("failed to release dataset lock",
				slog.String("key", key),
				slog.Any("error", err))
		}
	}
	return lockCtx, release, nil
}

func (s *Service) keepLock(ctx context.Context, cancel context.CancelCauseFunc, key, token string) {
	ticker := time.NewTicker(s.config.LockRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := s.deps.Locker.Extend(ctx, key, token)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return
		case apperrors.HasCode(err, apperrors.ErrCodeConflict):
			s.logger.Error("dataset lock lost", slog.String("key", key), slog.Any("error", err))
			cancel(err)
			return
		default:
			// the next tick retries while the TTL still covers us
			s.logger.Warn("failed to extend dataset lock", slog.String("key", key), slog.Any("error", err))
		}
	}
}

// lockLost returns the lock error that cancelled ctx, if any
func lockLost(ctx context.Context) error {
	if cause := context.Cause(ctx); apperrors.HasCode(cause, apperrors.ErrCodeConflict) {
		return cause
	}
	return nil
}

// startRun marks an existing run as running or creates a new one
func (s *Service) startRun(ctx context.Context, req Request, fileHash string) (uuid.UUID, error) {
	version := s.deps.Pipeline.GetVersion()

	if s.deps.Runs == nil {
		if req.RunID != uuid.Nil {
			return req.RunID, nil
		}
		return uuid.New(), nil
	}

	if req.RunID != uuid.Nil {
		if err := s.deps.Runs.MarkRunning(ctx, req.RunID, fileHash, version); err != nil {
			return uuid.Nil, err
		}
		return req.RunID, nil
	}

	run := &domain.CleanRun{
		SourceFile:      req.FilePath,
		FileHash:        fileHash,
		Status:          domain.RunStatusRunning,
		RefineryVersion: version,
		TextColumn:      s.config.TextColumn,
		OutputColumn:    s.config.OutputColumn,
	}
	if err := s.deps.Runs.Create(ctx, run); err != nil {
		return uuid.Nil, err
	}
	return run.ID, nil
}

func (s *Service) failRun(ctx context.Context, runID uuid.UUID, cause error) {
	if s.deps.Runs == nil {
		return
	}
	if err := s.deps.Runs.MarkFailed(context.WithoutCancel(ctx), runID, cause.Error()); err != nil {
		s.logger.Error("failed to record failed run",
			slog.String("run_id", runID.String()),
			slog.Any("error", err))
	}
}

func (s *Service) process(ctx context.Context, runID uuid.UUID, req Request) (*Result, error) {
	parsed, err := s.deps.Parser.ParseFile(ctx, req.FilePath)
	if err != nil {
		return nil, err
	}

	t := transformer.NewColumnTransformer(s.config.TextColumn, s.deps.Pipeline.CleanText,
		transformer.WithWorkers(s.config.Workers),
		transformer.WithLogger(s.logger))

	cleaned, err := transformer.FitTransform(ctx, t, parsed.Records)
	if err != nil {
		return nil, err
	}

	duplicates, err := s.dedup.Analyze(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	records := parsed.Records
	dropped := 0
	if s.config.DropDuplicates && duplicates.DuplicateRows > 0 {
		records = deduplication.Keep(duplicates, records)
		cleaned = deduplication.Keep(duplicates, cleaned)
		dropped = duplicates.DuplicateRows
	}

	empty := 0
	for _, text := range cleaned {
		if text == "" {
			empty++
		}
	}

	columns := outputColumns(parsed.Columns, s.config.OutputColumn)
	write := func(w io.Writer) error {
		return writeCSV(w, columns, s.config.OutputColumn, records, cleaned)
	}

	var outputPath string
	if req.OutputPath != "" {
		outputPath, err = s.deps.Files.WriteFile(ctx, req.OutputPath, write)
	} else {
		outputPath, err = s.deps.Files.WriteProcessedFile(ctx, runID.String(), kindCleaned, OutputFilename(req.FilePath), write)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Format:        parsed.Format,
		TotalRows:     parsed.TotalRows,
		SkippedRows:   parsed.SkippedRows,
		CleanedRows:   len(cleaned),
		EmptyOutputs:  empty,
		DuplicateRows: duplicates.DuplicateRows,
		DroppedRows:   dropped,
		OutputPath:    outputPath,
	}, nil
}

// OutputFilename derives the cleaned file name: train.xlsx -> train_clean.csv
func OutputFilename(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_clean.csv"
}

// outputColumns keeps the source columns in order and puts the output
// column last, replacing a source column of the same name
func outputColumns(source []string, outputColumn string) []string {
	columns := make([]string, 0, len(source)+1)
	for _, c := range source {
		if c != outputColumn {
			columns = append(columns, c)
		}
	}
	return append(columns, outputColumn)
}

func writeCSV(w io.Writer, columns []string, outputColumn string, records []domain.Record, cleaned []string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return err
	}

	row := make([]string, len(columns))
	for i, record := range records {
		for j, col := range columns {
			if col == outputColumn {
				row[j] = cleaned[i]
				continue
			}
			row[j] = record.Cell(col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
