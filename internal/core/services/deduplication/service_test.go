package deduplication

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Analyze(t *testing.T) {
	service := NewService(DefaultConfig(), nil)

	texts := []string{
		"forest fire near la ronge",
		"deed reason earthquake",
		"forest fire near la ronge", // Duplicate
		"",
		"",
		"forest fire near la ronge", // Duplicate
	}

	report, err := service.Analyze(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, 6, report.TotalRows)
	assert.Equal(t, 2, report.UniqueTexts)
	assert.Equal(t, 2, report.EmptyTexts)
	assert.Equal(t, 2, report.DuplicateRows)

	require.Len(t, report.Duplicates, 2)
	assert.Equal(t, 2, report.Duplicates[0].RowIndex)
	assert.Equal(t, 0, report.Duplicates[0].FirstRow)
	assert.Equal(t, 5, report.Duplicates[1].RowIndex)
	assert.Equal(t, report.Duplicates[0].Hash, report.Duplicates[1].Hash)

	assert.False(t, report.IsDuplicate(0))
	assert.True(t, report.IsDuplicate(2))
	assert.False(t, report.IsDuplicate(4), "empty texts are ignored by default")
}

func TestService_Analyze_EmptyTextsCounted(t *testing.T) {
	service := NewService(Config{IgnoreEmpty: false, MaxListed: 10}, nil)

	report, err := service.Analyze(context.Background(), []string{"", "a", ""})
	require.NoError(t, err)

	assert.Equal(t, 1, report.DuplicateRows)
	assert.True(t, report.IsDuplicate(2))
	assert.Equal(t, 2, report.UniqueTexts)
}

func TestService_Analyze_MaxListed(t *testing.T) {
	service := NewService(Config{IgnoreEmpty: true, MaxListed: 1}, nil)

	report, err := service.Analyze(context.Background(), []string{"a", "a", "a", "a"})
	require.NoError(t, err)

	assert.Equal(t, 3, report.DuplicateRows)
	assert.Len(t, report.Duplicates, 1)
}

func TestService_Analyze_Empty(t *testing.T) {
	service := NewService(DefaultConfig(), nil)

	report, err := service.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalRows)
	assert.Equal(t, 0, report.DuplicateRows)
	assert.Empty(t, report.Duplicates)
}

func TestService_Analyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewService(DefaultConfig(), nil).Analyze(ctx, []string{"a"})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeep(t *testing.T) {
	service := NewService(DefaultConfig(), nil)
	texts := []string{"a", "b", "a", "c", "b"}

	report, err := service.Analyze(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, Keep(report, texts))
	assert.Equal(t, []int{10, 11, 13}, Keep(report, []int{10, 11, 12, 13, 14}))
}

func TestNewService_NegativeMaxListed(t *testing.T) {
	service := NewService(Config{MaxListed: -5}, nil)
	assert.Equal(t, 0, service.GetConfig().MaxListed)
}
