package parsers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// CSVParser parses CSV files. The first row is the header.
type CSVParser struct {
	config *ParserConfig
}

// NewCSVParser creates a new CSV parser
func NewCSVParser(config *ParserConfig) *CSVParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &CSVParser{
		config: config,
	}
}

// Parse reads and parses a CSV file from disk
func (p *CSVParser) Parse(ctx context.Context, filePath string) (*ParseResult, error) {
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

// ParseStream reads and parses CSV data from a reader
func (p *CSVParser) ParseStream(ctx context.Context, r io.Reader) (*ParseResult, error) {
	csvReader := csv.NewReader(r)
	csvReader.TrimLeadingSpace = p.config.TrimWhitespace
	csvReader.FieldsPerRecord = -1 // rows may be ragged
	csvReader.LazyQuotes = true    // free text often carries stray quotes

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, apperrors.InvalidFile("CSV file has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	builder := newTableBuilder(p.config, header)

	for {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to read CSV row: %w", err)
			}
			// malformed rows are counted and skipped
			builder.skip()
			continue
		}

		builder.add(row)
	}

	return builder.result("CSV"), nil
}

// SupportedFormats returns the file extensions this parser supports
func (p *CSVParser) SupportedFormats() []string {
	return []string{".csv"}
}
