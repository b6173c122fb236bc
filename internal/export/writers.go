package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// Writer renders a table in one format.
type Writer interface {
	Write(ctx context.Context, w io.Writer, table Table) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, w io.Writer, table Table) error

// Write calls f.
func (f WriterFunc) Write(ctx context.Context, w io.Writer, table Table) error {
	return f(ctx, w, table)
}

// CSVWriter writes a header row followed by data rows.
type CSVWriter struct{}

// Write implements Writer.
func (CSVWriter) Write(_ context.Context, w io.Writer, table Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

const maxSheetName = 31

var invalidSheetChars = regexp.MustCompile(`[\[\]:*?/\\]`)

// ExcelWriter writes a single-sheet workbook.
type ExcelWriter struct{}

// Write implements Writer.
func (ExcelWriter) Write(_ context.Context, w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(table.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func sheetName(title string) string {
	name := strings.TrimSpace(invalidSheetChars.ReplaceAllString(title, " "))
	if name == "" {
		name = "Export"
	}
	if len(name) > maxSheetName {
		name = strings.TrimSpace(name[:maxSheetName])
	}
	return name
}

// PDFWriter lays the table out on landscape A4 pages.
type PDFWriter struct{}

const (
	pdfRowHeight = 7.0
	pdfMargin    = 10.0
)

// Write implements Writer.
func (PDFWriter) Write(_ context.Context, w io.Writer, table Table) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	colWidth := pageWidth - 2*pdfMargin
	if n := len(table.Headers); n > 0 {
		colWidth /= float64(n)
	}

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range table.Headers {
			pdf.CellFormat(colWidth, pdfRowHeight, fit(pdf, tr(h), colWidth), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(table.Title), "", 1, "L", false, 0, "")
	header()
	for _, row := range table.Rows {
		for _, v := range row {
			pdf.CellFormat(colWidth, pdfRowHeight, fit(pdf, tr(v), colWidth), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// fit truncates s so it renders within width, leaving room for cell padding.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return s + "..."
}
