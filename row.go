package sheettable

import (
	"time"
)

// Row is one data row of a table.
type Row struct {
	Number int               // 行番号 (row 1 holds the column names)
	Key    string            // value of the key column
	Values map[string]string // column name -> cell value
}

func newRow(number int, columns []string, cells []string) Row {
	r := Row{Number: number, Values: make(map[string]string, len(columns))}
	for i, col := range columns {
		if i < len(cells) {
			r.Values[col] = cells[i]
		} else {
			r.Values[col] = ""
		}
	}
	if len(cells) > 0 {
		r.Key = cells[0]
	}
	return r
}

// GetAsTime returns the value as time.Time or defaultValue if it cannot be parsed
func (r Row) GetAsTime(col string, defaultValue time.Time) time.Time {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	// Try various formats
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, v); err == nil {
			return t
		}
	}
	return defaultValue
}
