package cleaning

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/alejandroruanova/text-refinery/internal/core/domain"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/parsers"
)

// LockKeyPrefix prefixes the per-dataset lock key; the file hash follows
const LockKeyPrefix = "clean:lock:"

// DefaultLockRefresh is how often a held dataset lock is extended
const DefaultLockRefresh = time.Minute

// Parser reads a dataset file into records
type Parser interface {
	ParseFile(ctx context.Context, filePath string) (*parsers.ParseResult, error)
}

// FileStore hashes inputs and persists cleaned output
type FileStore interface {
	HashFile(ctx context.Context, path string) (string, error)
	WriteProcessedFile(ctx context.Context, runID, kind, filename string, write func(io.Writer) error) (string, error)
	WriteFile(ctx context.Context, path string, write func(io.Writer) error) (string, error)
}

// Locker keeps two workers from cleaning the same dataset at once.
// Acquire fails with a CONFLICT error when the lock is held; Extend fails
// with a CONFLICT error once the token no longer owns the lock.
type Locker interface {
	Acquire(ctx context.Context, key string) (token string, err error)
	Extend(ctx context.Context, key, token string) error
	Release(ctx context.Context, key, token string) error
}

// RunRepository records run progress
type RunRepository interface {
	Create(ctx context.Context, run *domain.CleanRun) error
	MarkRunning(ctx context.Context, id uuid.UUID, fileHash, refineryVersion string) error
	MarkCompleted(ctx context.Context, id uuid.UUID, totalRows, skippedRows int, outputPath string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Config for the cleaning service
type Config struct {
	TextColumn   string
	OutputColumn string
	Workers      int
	// DropDuplicates leaves rows whose cleaned text repeats an earlier row
	// out of the output
	DropDuplicates bool
	// LockRefresh is the interval at which the dataset lock is extended.
	// It must stay well below the locker's TTL.
	LockRefresh time.Duration
}

// DefaultConfig returns default cleaning configuration
func DefaultConfig() Config {
	return Config{
		TextColumn:   "text",
		OutputColumn: "clean_text",
		Workers:      1,
		LockRefresh:  DefaultLockRefresh,
	}
}

// Request describes one dataset to clean
type Request struct {
	// RunID names an existing run. A zero ID creates a new run.
	RunID    uuid.UUID
	FilePath string
	// OutputPath overrides the storage location of the cleaned CSV
	OutputPath string
}

// Result summarizes a finished cleaning run
type Result struct {
	RunID           uuid.UUID     `json:"run_id"`
	FileHash        string        `json:"file_hash"`
	RefineryVersion string        `json:"refinery_version"`
	Format          string        `json:"format"`
	TotalRows       int           `json:"total_rows"`
	SkippedRows     int           `json:"skipped_rows"`
	CleanedRows     int           `json:"cleaned_rows"`
	EmptyOutputs    int           `json:"empty_outputs"`
	DuplicateRows   int           `json:"duplicate_rows"`
	DroppedRows     int           `json:"dropped_rows"`
	OutputPath      string        `json:"output_path"`
	Duration        time.Duration `json:"duration"`
}
