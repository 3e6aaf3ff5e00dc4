package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is one dataset row keyed by column name
type Record map[string]interface{}

// Has reports whether the record carries column
func (r Record) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Cell renders a column value for tabular output. Absent and null values
// render empty, nested JSON values render as JSON.
func (r Record) Cell(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprint(v)
	}
}
