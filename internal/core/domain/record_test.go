package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Cell(t *testing.T) {
	record := Record{
		"text":   "forest fire",
		"id":     float64(4),
		"score":  0.25,
		"flag":   true,
		"empty":  nil,
		"tags":   []interface{}{"fire", "canada"},
		"nested": map[string]interface{}{"a": float64(1)},
	}

	tests := map[string]string{
		"text":    "forest fire",
		"id":      "4",
		"score":   "0.25",
		"flag":    "true",
		"empty":   "",
		"missing": "",
		"tags":    `["fire","canada"]`,
		"nested":  `{"a":1}`,
	}

	for column, expected := range tests {
		t.Run(column, func(t *testing.T) {
			assert.Equal(t, expected, record.Cell(column))
		})
	}
}

func TestRecord_Has(t *testing.T) {
	record := Record{"text": "", "empty": nil}

	assert.True(t, record.Has("text"))
	assert.True(t, record.Has("empty"))
	assert.False(t, record.Has("keyword"))
}
