package parsers

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// openDataset opens filePath after enforcing the configured size limit
func openDataset(filePath string, maxSize int64) (*os.File, error) {
	if err := checkFileSize(filePath, maxSize); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, apperrors.FileParseError(err, filePath)
	}
	return file, nil
}

func checkFileSize(filePath string, maxSize int64) error {
	stat, err := os.Stat(filePath)
	if err != nil {
		return apperrors.FileParseError(err, filePath)
	}
	if stat.IsDir() {
		return apperrors.InvalidFile(fmt.Sprintf("%s is a directory", filePath))
	}
	if maxSize > 0 && stat.Size() > maxSize {
		return apperrors.InvalidFile(
			fmt.Sprintf("file size %d exceeds maximum %d", stat.Size(), maxSize)).
			WithDetails("path", filePath)
	}
	return nil
}

// tableBuilder turns a header and string rows (CSV, Excel) into records
type tableBuilder struct {
	config  *ParserConfig
	header  []string
	records []Record
	total   int
	skipped int
}

func newTableBuilder(config *ParserConfig, header []string) *tableBuilder {
	if config.TrimWhitespace {
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
	}
	return &tableBuilder{
		config:  config,
		header:  header,
		records: make([]Record, 0, config.MaxRowsInMemory),
	}
}

func (b *tableBuilder) add(row []string) {
	b.total++

	if b.config.SkipEmptyRows && isEmptyRow(row) {
		b.skipped++
		return
	}

	record := make(Record, len(b.header))
	for i, col := range b.header {
		value := ""
		if i < len(row) {
			value = row[i]
			if b.config.TrimWhitespace {
				value = strings.TrimSpace(value)
			}
		}
		record[col] = value
	}
	b.records = append(b.records, record)
}

func (b *tableBuilder) skip() {
	b.total++
	b.skipped++
}

func (b *tableBuilder) result(format string) *ParseResult {
	return &ParseResult{
		Records:     b.records,
		TotalRows:   b.total,
		SkippedRows: b.skipped,
		Columns:     b.header,
		Format:      format,
	}
}

// columnSet collects column names in first-seen order
type columnSet struct {
	seen    map[string]bool
	columns []string
}

func newColumnSet() *columnSet {
	return &columnSet{seen: make(map[string]bool)}
}

// addRecord registers the record's keys; keys new in this record are added sorted
func (c *columnSet) addRecord(record Record) {
	var fresh []string
	for key := range record {
		if !c.seen[key] {
			c.seen[key] = true
			fresh = append(fresh, key)
		}
	}
	sort.Strings(fresh)
	c.columns = append(c.columns, fresh...)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// isEmptyRow checks if a row contains only empty strings
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
