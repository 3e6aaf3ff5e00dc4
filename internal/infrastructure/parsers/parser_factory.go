package parsers

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// ParserFactory creates the appropriate parser based on file extension
type ParserFactory struct {
	config  *ParserConfig
	parsers map[string]FileParser
}

// NewParserFactory creates a new parser factory with all built-in parsers
func NewParserFactory(config *ParserConfig) *ParserFactory {
	if config == nil {
		config = DefaultParserConfig()
	}

	factory := &ParserFactory{
		config:  config,
		parsers: make(map[string]FileParser),
	}

	factory.RegisterParser(NewCSVParser(config))
	factory.RegisterParser(NewExcelParser(config))
	factory.RegisterParser(NewJSONParser(config))
	factory.RegisterParser(NewJSONLParser(config))

	return factory
}

// RegisterParser registers a parser for every extension it supports
func (f *ParserFactory) RegisterParser(parser FileParser) {
	for _, ext := range parser.SupportedFormats() {
		f.parsers[normalizeExt(ext)] = parser
	}
}

// GetParser returns the parser for a file extension
func (f *ParserFactory) GetParser(fileExt string) (FileParser, error) {
	parser, exists := f.parsers[normalizeExt(fileExt)]
	if !exists {
		return nil, apperrors.UnsupportedFormat(fileExt)
	}

	return parser, nil
}

// GetParserForFile returns the parser based on file path
func (f *ParserFactory) GetParserForFile(filePath string) (FileParser, error) {
	return f.GetParser(filepath.Ext(filePath))
}

// ParseFile selects the parser for filePath and parses it
func (f *ParserFactory) ParseFile(ctx context.Context, filePath string) (*ParseResult, error) {
	parser, err := f.GetParserForFile(filePath)
	if err != nil {
		return nil, err
	}

	return parser.Parse(ctx, filePath)
}

// SupportedFormats returns all supported file extensions, sorted
func (f *ParserFactory) SupportedFormats() []string {
	formats := make([]string, 0, len(f.parsers))
	for ext := range f.parsers {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}

// IsSupported checks if a file extension is supported
func (f *ParserFactory) IsSupported(fileExt string) bool {
	_, exists := f.parsers[normalizeExt(fileExt)]
	return exists
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
