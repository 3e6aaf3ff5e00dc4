package parsers

import (
	"context"
	"io"

	"github.com/alejandroruanova/text-refinery/internal/core/domain"
)

// Record is one parsed row. CSV and Excel cells are strings; JSON values keep
// their decoded type.
type Record = domain.Record

// ParseResult contains the parsed rows and parsing statistics
type ParseResult struct {
	Records     []Record
	TotalRows   int
	SkippedRows int
	// Columns lists every column in first-seen order
	Columns []string
	Format  string
}

// HasColumn reports whether any parsed row carries the column
func (r *ParseResult) HasColumn(name string) bool {
	for _, c := range r.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// FileParser is the interface all parsers must implement
type FileParser interface {
	// Parse reads and parses the file from the given path
	Parse(ctx context.Context, filePath string) (*ParseResult, error)

	// ParseStream reads and parses from a reader
	ParseStream(ctx context.Context, r io.Reader) (*ParseResult, error)

	// SupportedFormats returns the file extensions this parser supports
	SupportedFormats() []string
}

// ParserConfig holds configuration for all parsers
type ParserConfig struct {
	// MaxRowsInMemory is the initial capacity reserved for records
	MaxRowsInMemory int

	// SkipEmptyRows drops rows whose cells are all blank. Off by default so
	// output rows line up with input rows.
	SkipEmptyRows bool

	// TrimWhitespace determines if header names and cell values are trimmed
	TrimWhitespace bool

	// MaxFileSize is the maximum file size in bytes (0 = unlimited)
	MaxFileSize int64
}

// DefaultParserConfig returns sensible defaults
func DefaultParserConfig() *ParserConfig {
	return &ParserConfig{
		MaxRowsInMemory: 10000,
		SkipEmptyRows:   false,
		TrimWhitespace:  true,
		MaxFileSize:     100 * 1024 * 1024, // 100 MB
	}
}
