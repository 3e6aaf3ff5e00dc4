package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// Layout under the base path:
//
//	sources/<run_id>/<file>            datasets staged for queued runs
//	processed/<run_id>/<kind>/<file>   cleaning output
const (
	sourcesDir   = "sources"
	processedDir = "processed"
)

// KindCleaned is the processed-file kind for cleaned datasets
const KindCleaned = "cleaned"

// LocalStorage manages datasets and cleaning output on the local filesystem
type LocalStorage struct {
	basePath string
	logger   *slog.Logger
}

// FileMetadata describes a stored file
type FileMetadata struct {
	RunID        string
	OriginalName string
	StoredPath   string
	Size         int64
	Hash         string
	CreatedAt    time.Time
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string, logger *slog.Logger) (*LocalStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if basePath == "" {
		return nil, apperrors.BadRequest("storage base path is empty")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
		logger:   logger,
	}, nil
}

// BasePath returns the storage root
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// SaveSource copies a dataset into storage for a run and hashes it on the way
func (s *LocalStorage) SaveSource(ctx context.Context, runID string, filename string, reader io.Reader) (*FileMetadata, error) {
	dir := filepath.Join(s.basePath, sourcesDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create source directory: %w", err)
	}

	safeName := filepath.Base(filename)
	destPath := filepath.Join(dir, safeName)

	hash := sha256.New()
	size, err := writeAtomic(destPath, func(w io.Writer) error {
		_, err := io.Copy(io.MultiWriter(w, hash), reader)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store source file: %w", err)
	}

	metadata := &FileMetadata{
		RunID:        runID,
		OriginalName: filename,
		StoredPath:   destPath,
		Size:         size,
		Hash:         hex.EncodeToString(hash.Sum(nil)),
		CreatedAt:    time.Now(),
	}

	s.logger.Info("source file stored",
		slog.String("run_id", runID),
		slog.String("filename", safeName),
		slog.Int64("size", size),
		slog.String("hash", metadata.Hash))

	return metadata, nil
}

// WriteProcessedFile streams output produced by write into
// processed/<runID>/<kind>/<filename>. The file appears only once write succeeds.
func (s *LocalStorage) WriteProcessedFile(ctx context.Context, runID, kind, filename string, write func(io.Writer) error) (string, error) {
	dir := filepath.Join(s.basePath, processedDir, runID, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create processed directory: %w", err)
	}

	filePath := filepath.Join(dir, filepath.Base(filename))

	size, err := writeAtomic(filePath, write)
	if err != nil {
		return "", fmt.Errorf("failed to write processed file: %w", err)
	}

	s.logger.Info("processed file saved",
		slog.String("run_id", runID),
		slog.String("kind", kind),
		slog.String("filename", filename),
		slog.Int64("size", size))

	return filePath, nil
}

// SaveProcessedFile writes data as a processed file
func (s *LocalStorage) SaveProcessedFile(ctx context.Context, runID, kind, filename string, data []byte) (string, error) {
	return s.WriteProcessedFile(ctx, runID, kind, filename, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// GetProcessedFile reads a processed file
func (s *LocalStorage) GetProcessedFile(ctx context.Context, runID, kind, filename string) ([]byte, error) {
	filePath := filepath.Join(s.basePath, processedDir, runID, kind, filepath.Base(filename))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound(
				fmt.Sprintf("processed file not found: %s/%s/%s", runID, kind, filename))
		}
		return nil, fmt.Errorf("failed to read processed file: %w", err)
	}

	return data, nil
}

// ListProcessedFiles lists processed files for a run, grouped by kind
func (s *LocalStorage) ListProcessedFiles(ctx context.Context, runID string) (map[string][]string, error) {
	runDir := filepath.Join(s.basePath, processedDir, runID)

	result := make(map[string][]string)

	kinds, err := os.ReadDir(runDir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read processed directory: %w", err)
	}

	for _, kindEntry := range kinds {
		if !kindEntry.IsDir() {
			continue
		}

		files, err := os.ReadDir(filepath.Join(runDir, kindEntry.Name()))
		if err != nil {
			continue
		}

		var names []string
		for _, file := range files {
			if !file.IsDir() {
				names = append(names, file.Name())
			}
		}
		sort.Strings(names)

		if len(names) > 0 {
			result[kindEntry.Name()] = names
		}
	}

	return result, nil
}

// DeleteRun removes the staged source and all output of a run
func (s *LocalStorage) DeleteRun(ctx context.Context, runID string) error {
	for _, dir := range []string{
		filepath.Join(s.basePath, sourcesDir, runID),
		filepath.Join(s.basePath, processedDir, runID),
	} {
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", dir, err)
		}
	}

	s.logger.Info("run files deleted", slog.String("run_id", runID))

	return nil
}

// CleanupOldFiles removes run directories older than the given duration and
// returns how many were removed
func (s *LocalStorage) CleanupOldFiles(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoffTime := time.Now().Add(-olderThan)
	removed := 0

	for _, dir := range []string{sourcesDir, processedDir} {
		n, err := s.cleanupDirectory(ctx, filepath.Join(s.basePath, dir), cutoffTime)
		removed += n
		if err != nil {
			return removed, fmt.Errorf("failed to cleanup %s: %w", dir, err)
		}
	}

	s.logger.Info("cleanup completed",
		slog.Duration("older_than", olderThan),
		slog.Int("removed", removed))

	return removed, nil
}

// cleanupDirectory removes directories older than cutoff time
func (s *LocalStorage) cleanupDirectory(ctx context.Context, dir string, cutoffTime time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !entry.IsDir() {
			continue
		}

		dirPath := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("failed to get file info",
				slog.String("path", dirPath),
				slog.Any("error", err))
			continue
		}

		if !info.ModTime().Before(cutoffTime) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			s.logger.Warn("failed to remove directory",
				slog.String("path", dirPath),
				slog.Any("error", err))
			continue
		}

		removed++
		s.logger.Debug("removed old directory",
			slog.String("path", dirPath),
			slog.Time("mod_time", info.ModTime()))
	}

	return removed, nil
}

// GetStoragePath returns the directory for a run's source or a processed kind
func (s *LocalStorage) GetStoragePath(runID string, kind string) string {
	if kind == "source" {
		return filepath.Join(s.basePath, sourcesDir, runID)
	}
	return filepath.Join(s.basePath, processedDir, runID, kind)
}

// HashFile returns the hex SHA-256 of a file's contents
func (s *LocalStorage) HashFile(ctx context.Context, path string) (string, error) {
	return HashFile(path)
}

// WriteFile streams output to an explicit path outside the storage layout
func (s *LocalStorage) WriteFile(ctx context.Context, path string, write func(io.Writer) error) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	size, err := writeAtomic(path, write)
	if err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}

	s.logger.Info("output file saved",
		slog.String("path", path),
		slog.Int64("size", size))

	return path, nil
}

// HashFile returns the hex SHA-256 of a file's contents
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.FileParseError(err, path)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", apperrors.FileParseError(err, path)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// writeAtomic writes through a temp file in the destination directory and
// renames it into place
func writeAtomic(destPath string, write func(io.Writer) error) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-"+filepath.Base(destPath)+"-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	counter := &countingWriter{w: tmp}
	if err := write(counter); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpName, destPath); err != nil {
		return 0, err
	}

	return counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
