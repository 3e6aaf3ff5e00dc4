package parsers

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// ExcelParser parses the first sheet of Excel workbooks (.xlsx, .xls)
type ExcelParser struct {
	config *ParserConfig
}

// NewExcelParser creates a new Excel parser
func NewExcelParser(config *ParserConfig) *ExcelParser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &ExcelParser{
		config: config,
	}
}

// Parse reads and parses an Excel file from disk
func (p *ExcelParser) Parse(ctx context.Context, filePath string) (*ParseResult, error) {
	if err := checkFileSize(filePath, p.config.MaxFileSize); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.FileParseError(err, filePath)
	}
	defer f.Close()

	result, err := p.parseWorkbook(ctx, f)
	if err != nil && !apperrors.IsAppError(err) && ctx.Err() == nil {
		return nil, apperrors.FileParseError(err, filePath)
	}
	return result, err
}

// ParseStream reads and parses Excel data from a reader
func (p *ExcelParser) ParseStream(ctx context.Context, r io.Reader) (*ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel stream: %w", err)
	}
	defer f.Close()

	return p.parseWorkbook(ctx, f)
}

// parseWorkbook extracts data from the first sheet
func (p *ExcelParser) parseWorkbook(ctx context.Context, f *excelize.File) (*ParseResult, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, apperrors.InvalidFile("no sheets found in Excel file")
	}

	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	defer rows.Close()

	var builder *tableBuilder
	for rows.Next() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		row, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", sheetName, err)
		}

		if builder == nil {
			builder = newTableBuilder(p.config, row)
			continue
		}
		builder.add(row)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheet %s: %w", sheetName, err)
	}

	if builder == nil {
		return &ParseResult{
			Records: []Record{},
			Columns: []string{},
			Format:  "XLSX",
		}, nil
	}

	return builder.result("XLSX"), nil
}

// SupportedFormats returns the file extensions this parser supports.
// Legacy BIFF workbooks (.xls) cannot be read by excelize.
func (p *ExcelParser) SupportedFormats() []string {
	return []string{".xlsx"}
}
