// Package export renders report tables and drafted documents to downloadable files.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is a downloadable file type.
type Format string

const (
	TXT  Format = "txt"
	CSV  Format = "csv"
	PDF  Format = "pdf"
	DOCX Format = "docx"
	XLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats the exporter cannot produce.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat maps a format name (any case) to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case TXT, CSV, PDF, DOCX, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case TXT:
		return "text/plain; charset=utf-8"
	case CSV:
		return "text/csv; charset=utf-8"
	case PDF:
		return "application/pdf"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Filename returns base with the format's extension.
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Table is tabular report data. Lines, when set, replaces the default TXT rendering.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Lines   []string
}

// PDFRenderer prints an HTML body to PDF.
type PDFRenderer interface {
	Render(ctx context.Context, title, body string) ([]byte, error)
}

// Exporter produces files in every supported format.
type Exporter struct {
	PDF PDFRenderer
}

// New creates an exporter. pdf may be nil when PDF output is not available.
func New(pdf PDFRenderer) *Exporter {
	return &Exporter{PDF: pdf}
}

// Table renders t in format f.
func (e *Exporter) Table(ctx context.Context, t Table, f Format) ([]byte, error) {
	switch f {
	case TXT:
		return tableText(t), nil
	case CSV:
		return tableCSV(t)
	case XLSX:
		return tableXLSX(t)
	case DOCX:
		return docxTable(t)
	case PDF:
		return e.pdf(ctx, t.Title, tableHTML(t))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Document renders free text, such as a drafted petition, in format f.
func (e *Exporter) Document(ctx context.Context, title, text string, f Format) ([]byte, error) {
	switch f {
	case TXT:
		return []byte(text), nil
	case DOCX:
		return docxText(title, text)
	case PDF:
		return e.pdf(ctx, title, textHTML(title, text))
	default:
		return nil, fmt.Errorf("%w: %q for documents", ErrUnsupportedFormat, f)
	}
}

func (e *Exporter) pdf(ctx context.Context, title, body string) ([]byte, error) {
	if e.PDF == nil {
		return nil, fmt.Errorf("%w: pdf renderer not configured", ErrUnsupportedFormat)
	}
	return e.PDF.Render(ctx, title, body)
}

func tableText(t Table) []byte {
	var b strings.Builder
	if len(t.Lines) > 0 {
		for _, l := range t.Lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		return []byte(b.String())
	}
	b.WriteString(TextRow(t.Headers))
	b.WriteByte('\n')
	for _, row := range t.Rows {
		b.WriteString(TextRow(row))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// TextDelimiter separates cells in TXT table rows.
const TextDelimiter = " | "

var cellEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// TextRow joins cells into one TXT line. Backslashes, pipes and line breaks
// inside a cell are backslash-escaped so every row stays on a single line.
func TextRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = cellEscaper.Replace(c)
	}
	return strings.Join(escaped, TextDelimiter)
}

func tableCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SheetName is the worksheet holding XLSX reports.
const SheetName = "Relatório"

func tableXLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if len(t.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
			return nil, err
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tableHTML(t Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n<table>\n<thead><tr>", html.EscapeString(t.Title))
	for _, h := range t.Headers {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, v := range row {
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(v))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}

func textHTML(title, text string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))
	}
	for _, para := range paragraphs(text) {
		if strings.TrimSpace(para) == "" {
			b.WriteString("<p>&nbsp;</p>\n")
			continue
		}
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(para))
	}
	return b.String()
}

// paragraphs splits text into lines. Blank lines and indentation are kept;
// only trailing line breaks are dropped.
func paragraphs(text string) []string {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
