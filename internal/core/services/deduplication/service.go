// Package deduplication finds rows whose cleaned text repeats an earlier row.
// After cleaning, distinct messages often collapse to the same features; the
// report lets callers see or drop them.
package deduplication

import (
	"context"
	"log/slog"
)

// Service detects duplicate cleaned texts
type Service struct {
	config Config
	logger *slog.Logger
}

// NewService creates a new deduplication service
func NewService(config Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxListed < 0 {
		config.MaxListed = 0
	}

	return &Service{
		config: config,
		logger: logger,
	}
}

// Analyze hashes every text and marks each repeat of an earlier text. The
// first occurrence is never a duplicate.
func (s *Service) Analyze(ctx context.Context, texts []string) (*Report, error) {
	report := &Report{
		TotalRows: len(texts),
		duplicate: make(map[int]bool),
	}

	firstSeen := make(map[string]int, len(texts))

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if text == "" {
			report.EmptyTexts++
			if s.config.IgnoreEmpty {
				continue
			}
		}

		hash := hashText(text)
		first, seen := firstSeen[hash]
		if !seen {
			firstSeen[hash] = i
			continue
		}

		report.duplicate[i] = true
		report.DuplicateRows++
		if len(report.Duplicates) < s.config.MaxListed {
			report.Duplicates = append(report.Duplicates, Duplicate{
				RowIndex: i,
				FirstRow: first,
				Hash:     hash,
			})
		}
	}

	report.UniqueTexts = len(firstSeen)

	if report.DuplicateRows > 0 {
		s.logger.Debug("duplicate cleaned texts found",
			slog.Int("duplicate_rows", report.DuplicateRows),
			slog.Int("unique_texts", report.UniqueTexts))
	}

	return report, nil
}

// Keep returns the rows of items that are not duplicates, in order
func Keep[T any](report *Report, items []T) []T {
	size := len(items) - report.DuplicateRows
	if size < 0 {
		size = 0
	}
	kept := make([]T, 0, size)
	for i, item := range items {
		if !report.IsDuplicate(i) {
			kept = append(kept, item)
		}
	}
	return kept
}

// GetConfig returns the current configuration
func (s *Service) GetConfig() Config {
	return s.config
}
