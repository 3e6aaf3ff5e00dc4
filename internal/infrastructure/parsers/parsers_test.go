package parsers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

const tweetsCSV = `id,keyword,text,target
1,,Our Deeds are the Reason of this #earthquake,1
4,fire,"Forest fire near La Ronge Sask. Canada",1
5,,"All residents asked to 'shelter in place', are being notified",1
`

const tweetsJSONL = `{"id": 1, "text": "Our Deeds are the Reason of this #earthquake"}
{"id": 4, "text": "Forest fire near La Ronge Sask. Canada"}
{"id": 5, "text": "All residents asked to 'shelter in place'"}
`

func setupTestFiles(t *testing.T) string {
	tempDir := t.TempDir()

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0644))
	}

	write("tweets.csv", tweetsCSV)
	write("tweets.json", `[
  {"id": 1, "text": "Our Deeds are the Reason of this #earthquake"},
  {"id": 4, "text": "Forest fire near La Ronge Sask. Canada"},
  {"id": 5, "text": "All residents asked to 'shelter in place'"}
]`)
	write("tweets.jsonl", tweetsJSONL)
	write("tweets.ndjson", tweetsJSONL)
	write("tweets.jsonnl", tweetsJSONL)

	xlsx := excelize.NewFile()
	defer xlsx.Close()
	sheet := xlsx.GetSheetName(0)
	require.NoError(t, xlsx.SetSheetRow(sheet, "A1", &[]interface{}{"id", "text"}))
	require.NoError(t, xlsx.SetSheetRow(sheet, "A2", &[]interface{}{"1", "Our Deeds are the Reason"}))
	require.NoError(t, xlsx.SetSheetRow(sheet, "A3", &[]interface{}{"4", "Forest fire near La Ronge"}))
	require.NoError(t, xlsx.SetSheetRow(sheet, "A4", &[]interface{}{"5", "  shelter in place  "}))
	require.NoError(t, xlsx.SaveAs(filepath.Join(tempDir, "tweets.xlsx")))

	return tempDir
}

func TestCSVParser_Parse(t *testing.T) {
	tempDir := setupTestFiles(t)

	parser := NewCSVParser(nil)
	result, err := parser.Parse(context.Background(), filepath.Join(tempDir, "tweets.csv"))

	require.NoError(t, err)
	assert.Equal(t, 3, len(result.Records))
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, "CSV", result.Format)
	assert.Equal(t, []string{"id", "keyword", "text", "target"}, result.Columns)

	assert.Equal(t, "Our Deeds are the Reason of this #earthquake", result.Records[0]["text"])
	assert.Equal(t, "", result.Records[0]["keyword"])
	assert.Equal(t, "fire", result.Records[1]["keyword"])
	assert.Equal(t, "All residents asked to 'shelter in place', are being notified", result.Records[2]["text"])
}

func TestCSVParser_EmptyRowsKeptByDefault(t *testing.T) {
	content := "id,text\n1,hello\n,\n2,world\n"

	result, err := NewCSVParser(nil).ParseStream(context.Background(), strings.NewReader(content))

	require.NoError(t, err)
	require.Equal(t, 3, len(result.Records))
	assert.Equal(t, "", result.Records[1]["text"])
	assert.Equal(t, 0, result.SkippedRows)
}

func TestCSVParser_SkipEmptyRows(t *testing.T) {
	content := "Name,Age\nJohn,30\n,\nJane,25\n,\n"

	config := DefaultParserConfig()
	config.SkipEmptyRows = true

	result, err := NewCSVParser(config).ParseStream(context.Background(), strings.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, 2, len(result.Records))
	assert.Equal(t, 2, result.SkippedRows)
	assert.Equal(t, 4, result.TotalRows)
}

func TestCSVParser_TrimWhitespace(t *testing.T) {
	content := " Name , Age \n  John  ,  30  \n"

	result, err := NewCSVParser(nil).ParseStream(context.Background(), strings.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Age"}, result.Columns)
	assert.Equal(t, "John", result.Records[0]["Name"])
	assert.Equal(t, "30", result.Records[0]["Age"])
}

func TestCSVParser_MissingColumns(t *testing.T) {
	content := "Name,Age,City\nJohn,30,NYC\nJane,25\nBob\n"

	result, err := NewCSVParser(nil).ParseStream(context.Background(), strings.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, 3, len(result.Records))
	assert.Equal(t, "", result.Records[1]["City"])
	assert.Equal(t, "", result.Records[2]["Age"])
	assert.Equal(t, "", result.Records[2]["City"])
}

func TestCSVParser_StrayQuotes(t *testing.T) {
	content := "id,text\n1,he said \"run\" now\n"

	result, err := NewCSVParser(nil).ParseStream(context.Background(), strings.NewReader(content))

	require.NoError(t, err)
	require.Equal(t, 1, len(result.Records))
	assert.Equal(t, `he said "run" now`, result.Records[0]["text"])
}

func TestCSVParser_ReadErrorStopsParsing(t *testing.T) {
	readErr := errors.New("device unplugged")
	r := io.MultiReader(strings.NewReader("text\nhello\n"), iotest.ErrReader(readErr))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := NewCSVParser(nil).ParseStream(ctx, r)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, readErr)
	assert.NoError(t, ctx.Err())
}

func TestCSVParser_NoHeader(t *testing.T) {
	_, err := NewCSVParser(nil).ParseStream(context.Background(), strings.NewReader(""))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidFile))
}

func TestCSVParser_MissingFile(t *testing.T) {
	_, err := NewCSVParser(nil).Parse(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFileParseError))
}

func TestJSONParser_Parse(t *testing.T) {
	tempDir := setupTestFiles(t)

	result, err := NewJSONParser(nil).Parse(context.Background(), filepath.Join(tempDir, "tweets.json"))

	require.NoError(t, err)
	assert.Equal(t, 3, len(result.Records))
	assert.Equal(t, "JSON", result.Format)
	assert.Equal(t, []string{"id", "text"}, result.Columns)
	assert.Equal(t, float64(1), result.Records[0]["id"]) // JSON numbers are float64
	assert.Equal(t, "Forest fire near La Ronge Sask. Canada", result.Records[1]["text"])
}

func TestJSONParser_SingleObject(t *testing.T) {
	content := `  {"text": "Just one tweet", "id": 9}`

	result, err := NewJSONParser(nil).ParseStream(context.Background(), strings.NewReader(content))

	require.NoError(t, err)
	require.Equal(t, 1, len(result.Records))
	assert.Equal(t, "Just one tweet", result.Records[0]["text"])
	assert.Equal(t, []string{"id", "text"}, result.Columns)
}

func TestJSONParser_ColumnsInFirstSeenOrder(t *testing.T) {
	content := `[{"text": "a"}, {"text": "b", "author": "x", "id": 2}]`

	result, err := NewJSONParser(nil).ParseStream(context.Background(), strings.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, []string{"text", "author", "id"}, result.Columns)
}

func TestJSONParser_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    apperrors.ErrorCode
	}{
		{name: "empty", content: "   ", code: apperrors.ErrCodeInvalidFile},
		{name: "scalar", content: `"text"`, code: apperrors.ErrCodeInvalidFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJSONParser(nil).ParseStream(context.Background(), strings.NewReader(tt.content))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code))
		})
	}

	_, err := NewJSONParser(nil).ParseStream(context.Background(), strings.NewReader(`[{"text": 1},`))
	assert.Error(t, err)
}

func TestJSONLParser_ParseStream(t *testing.T) {
	result, err := NewJSONLParser(nil).ParseStream(context.Background(), strings.NewReader(tweetsJSONL))

	require.NoError(t, err)
	assert.Equal(t, 3, len(result.Records))
	assert.Equal(t, "JSONL", result.Format)
	assert.Equal(t, []string{"id", "text"}, result.Columns)
}

func TestJSONLParser_SkipEmptyLines(t *testing.T) {
	content := "{\"text\": \"John\"}\n\n{\"text\": \"Jane\"}\n   \n"

	result, err := NewJSONLParser(nil).ParseStream(context.Background(), strings.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, 2, len(result.Records))
	assert.Equal(t, 2, result.SkippedRows)
}

func TestJSONLParser_SkipMalformedLines(t *testing.T) {
	content := "{\"text\": \"John\"}\n{invalid json}\nnull\n{\"text\": \"Jane\"}\n"

	result, err := NewJSONLParser(nil).ParseStream(context.Background(), strings.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, 2, len(result.Records))
	assert.Equal(t, 2, result.SkippedRows)
}

func TestJSONLParser_AllVariants(t *testing.T) {
	tempDir := setupTestFiles(t)
	parser := NewJSONLParser(nil)

	for _, filename := range []string{"tweets.jsonl", "tweets.ndjson", "tweets.jsonnl"} {
		t.Run(filename, func(t *testing.T) {
			result, err := parser.Parse(context.Background(), filepath.Join(tempDir, filename))

			require.NoError(t, err)
			assert.Equal(t, 3, len(result.Records))
			assert.Equal(t, "JSONL", result.Format)
		})
	}
}

func TestExcelParser_Parse(t *testing.T) {
	tempDir := setupTestFiles(t)

	result, err := NewExcelParser(nil).Parse(context.Background(), filepath.Join(tempDir, "tweets.xlsx"))

	require.NoError(t, err)
	assert.Equal(t, "XLSX", result.Format)
	assert.Equal(t, []string{"id", "text"}, result.Columns)
	require.Equal(t, 3, len(result.Records))
	assert.Equal(t, "Forest fire near La Ronge", result.Records[1]["text"])
	assert.Equal(t, "shelter in place", result.Records[2]["text"])
}

func TestExcelParser_ParseStream(t *testing.T) {
	tempDir := setupTestFiles(t)
	data, err := os.ReadFile(filepath.Join(tempDir, "tweets.xlsx"))
	require.NoError(t, err)

	result, err := NewExcelParser(nil).ParseStream(context.Background(), bytes.NewReader(data))

	require.NoError(t, err)
	assert.Equal(t, 3, len(result.Records))
}

func TestParserFactory_GetParser(t *testing.T) {
	factory := NewParserFactory(nil)

	tests := []struct {
		ext      string
		expected interface{}
	}{
		{".csv", &CSVParser{}},
		{"CSV", &CSVParser{}},
		{".xlsx", &ExcelParser{}},
		{".json", &JSONParser{}},
		{".jsonl", &JSONLParser{}},
		{".ndjson", &JSONLParser{}},
		{".jsonnl", &JSONLParser{}},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			parser, err := factory.GetParser(tt.ext)
			require.NoError(t, err)
			assert.IsType(t, tt.expected, parser)
		})
	}
}

func TestParserFactory_GetParser_Unsupported(t *testing.T) {
	factory := NewParserFactory(nil)

	parser, err := factory.GetParser(".txt")
	assert.Nil(t, parser)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnsupportedFormat))

	_, err = factory.ParseFile(context.Background(), "notes.pdf")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnsupportedFormat))
}

func TestParserFactory_IsSupported(t *testing.T) {
	factory := NewParserFactory(nil)

	for _, ext := range []string{".csv", ".xlsx", ".json", ".jsonl", ".ndjson", ".jsonnl"} {
		assert.True(t, factory.IsSupported(ext), ext)
	}
	for _, ext := range []string{".txt", ".pdf", ".xml", ".xls"} {
		assert.False(t, factory.IsSupported(ext), ext)
	}
}

func TestParserFactory_ParseFile(t *testing.T) {
	tempDir := setupTestFiles(t)
	factory := NewParserFactory(nil)

	tests := []struct {
		filename string
		format   string
		records  int
	}{
		{"tweets.csv", "CSV", 3},
		{"tweets.json", "JSON", 3},
		{"tweets.jsonl", "JSONL", 3},
		{"tweets.ndjson", "JSONL", 3},
		{"tweets.jsonnl", "JSONL", 3},
		{"tweets.xlsx", "XLSX", 3},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result, err := factory.ParseFile(context.Background(), filepath.Join(tempDir, tt.filename))

			require.NoError(t, err)
			assert.Equal(t, tt.format, result.Format)
			assert.Equal(t, tt.records, len(result.Records))
			assert.True(t, result.HasColumn("text"))
		})
	}
}

func TestParserFactory_SupportedFormats(t *testing.T) {
	formats := NewParserFactory(nil).SupportedFormats()

	assert.Equal(t, []string{".csv", ".json", ".jsonl", ".jsonnl", ".ndjson", ".xlsx"}, formats)
}

func TestParserConfig_MaxFileSize(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "tweets.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(tweetsCSV), 0644))

	config := DefaultParserConfig()
	config.MaxFileSize = 10

	_, err := NewCSVParser(config).Parse(context.Background(), csvPath)

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidFile))
	assert.Contains(t, err.Error(), "exceeds maximum")
}

func TestContext_Cancellation(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("id,text\n")
	for i := 0; i < 10000; i++ {
		buf.WriteString("1,forest fire\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVParser(nil).ParseStream(ctx, &buf)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultParserConfig(t *testing.T) {
	config := DefaultParserConfig()

	assert.Equal(t, 10000, config.MaxRowsInMemory)
	assert.False(t, config.SkipEmptyRows)
	assert.True(t, config.TrimWhitespace)
	assert.Equal(t, int64(100*1024*1024), config.MaxFileSize)
}
