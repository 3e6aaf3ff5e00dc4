package parsers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// maxJSONLLine is the longest line the scanner accepts
const maxJSONLLine = 1024 * 1024

// JSONLParser parses JSONL/NDJSON files (newline-delimited JSON)
type JSONLParser struct {
	config *ParserConfig
}

// NewJSONLParser creates a new JSONL parser
func NewJSONLParser(config *ParserConfig) *JSONLParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &JSONLParser{
		config: config,
	}
}

// Parse reads and parses a JSONL file from disk
func (p *JSONLParser) Parse(ctx context.Context, filePath string) (*ParseResult, error) {
	file, err := openDataset(filePath, p.config.MaxFileSize)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	result, err := p.ParseStream(ctx, file)
	if err != nil && !apperrors.IsAppError(err) && ctx.Err() == nil {
		return nil, apperrors.FileParseError(err, filePath)
	}
	return result, err
}

// ParseStream reads and parses JSONL data from a reader. Blank and malformed
// lines are skipped and counted.
func (p *JSONLParser) ParseStream(ctx context.Context, r io.Reader) (*ParseResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxJSONLLine)

	records := make([]Record, 0, p.config.MaxRowsInMemory)
	columns := newColumnSet()
	totalRows := 0
	skippedRows := 0

	for scanner.Scan() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		totalRows++

		if len(line) == 0 {
			skippedRows++
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil || record == nil {
			skippedRows++
			continue
		}

		if p.config.SkipEmptyRows && len(record) == 0 {
			skippedRows++
			continue
		}

		columns.addRecord(record)
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading JSONL stream: %w", err)
	}

	return &ParseResult{
		Records:     records,
		TotalRows:   totalRows,
		SkippedRows: skippedRows,
		Columns:     columns.columns,
		Format:      "JSONL",
	}, nil
}

// SupportedFormats returns the file extensions this parser supports
func (p *JSONLParser) SupportedFormats() []string {
	return []string{".jsonl", ".ndjson", ".jsonnl"}
}
