package export

import (
	"path/filepath"
	"strings"
)

// Format is an export file format.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
)

// LookupFormat resolves the canonical names plus common aliases. Anything
// else is returned as given, lowercased, for the coordinator to reject.
func LookupFormat(raw string) Format {
	switch name := strings.ToLower(strings.TrimSpace(raw)); name {
	case "pdf":
		return FormatPDF
	case "excel", "xlsx", "xls":
		return FormatExcel
	case "csv":
		return FormatCSV
	default:
		return Format(name)
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatPDF:
		return ".pdf"
	case FormatExcel:
		return ".xlsx"
	case FormatCSV:
		return ".csv"
	default:
		return ""
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// FileName returns name with the format extension, or fallback when name is blank.
func (f Format) FileName(name, fallback string) string {
	name = strings.TrimSpace(filepath.Base(strings.TrimSpace(name)))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = fallback
	}
	ext := f.Extension()
	if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}
	return name
}
