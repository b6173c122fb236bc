package export

import "time"

// DateLayout is the calendar date format used in exported cells.
const DateLayout = "2006-01-02"

// Column describes one exported column of a record type.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Table is the format-neutral payload handed to writers.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewTable renders records through columns, preserving record order.
func NewTable[T any](title string, records []T, columns []Column[T]) Table {
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = col.Value(rec)
		}
		rows = append(rows, row)
	}
	return Table{Title: title, Headers: headers, Rows: rows}
}

// FormatDate renders an optional date, blank when unset.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
