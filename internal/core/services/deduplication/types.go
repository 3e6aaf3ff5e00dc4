package deduplication

import (
	"crypto/sha256"
	"encoding/hex"
)

// Duplicate is a row whose cleaned text repeats an earlier row
type Duplicate struct {
	RowIndex int    `json:"row_index"`
	FirstRow int    `json:"first_row"`
	Hash     string `json:"hash"`
}

// Report describes repeated cleaned texts in one batch
type Report struct {
	TotalRows     int         `json:"total_rows"`
	UniqueTexts   int         `json:"unique_texts"`
	EmptyTexts    int         `json:"empty_texts"`
	DuplicateRows int         `json:"duplicate_rows"`
	Duplicates    []Duplicate `json:"duplicates,omitempty"`

	duplicate map[int]bool
}

// IsDuplicate reports whether row repeats an earlier row
func (r *Report) IsDuplicate(row int) bool {
	return r.duplicate[row]
}

// Config for the duplicate detector
type Config struct {
	// IgnoreEmpty leaves rows that cleaned to "" out of duplicate detection
	IgnoreEmpty bool
	// MaxListed caps Report.Duplicates; 0 lists none, counts stay exact
	MaxListed int
}

// DefaultConfig returns default detector configuration
func DefaultConfig() Config {
	return Config{
		IgnoreEmpty: true,
		MaxListed:   100,
	}
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
