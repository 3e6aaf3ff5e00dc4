package parsers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// JSONParser parses JSON files holding either an array of objects or a
// single object
type JSONParser struct {
	config *ParserConfig
}

// NewJSONParser creates a new JSON parser
func NewJSONParser(config *ParserConfig) *JSONParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &JSONParser{
		config: config,
	}
}

// Parse reads and parses a JSON file from disk
func (p *JSONParser) Parse(ctx context.Context, filePath string) (*ParseResult, error) {
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

// ParseStream reads and parses JSON data from a reader
func (p *JSONParser) ParseStream(ctx context.Context, r io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, apperrors.InvalidFile("JSON file is empty")
	}

	var records []Record
	switch trimmed[0] {
	case '[':
		records, err = p.decodeArray(ctx, trimmed)
		if err != nil {
			return nil, err
		}
	case '{':
		var record Record
		if err := json.Unmarshal(trimmed, &record); err != nil {
			return nil, fmt.Errorf("failed to decode JSON object: %w", err)
		}
		records = []Record{record}
	default:
		return nil, apperrors.InvalidFile("JSON file must hold an object or an array of objects")
	}

	columns := newColumnSet()
	kept := make([]Record, 0, len(records))
	skipped := 0
	for _, record := range records {
		if p.config.SkipEmptyRows && len(record) == 0 {
			skipped++
			continue
		}
		columns.addRecord(record)
		kept = append(kept, record)
	}

	return &ParseResult{
		Records:     kept,
		TotalRows:   len(records),
		SkippedRows: skipped,
		Columns:     columns.columns,
		Format:      "JSON",
	}, nil
}

func (p *JSONParser) decodeArray(ctx context.Context, data []byte) ([]Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))

	// opening bracket
	if _, err := decoder.Token(); err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}

	records := make([]Record, 0, p.config.MaxRowsInMemory)
	for decoder.More() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		var record Record
		if err := decoder.Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to decode JSON record %d: %w", len(records), err)
		}
		if record == nil {
			record = Record{}
		}
		records = append(records, record)
	}

	if _, err := decoder.Token(); err != nil {
		return nil, fmt.Errorf("failed to read closing bracket: %w", err)
	}

	return records, nil
}

// SupportedFormats returns the file extensions this parser supports
func (p *JSONParser) SupportedFormats() []string {
	return []string{".json"}
}
