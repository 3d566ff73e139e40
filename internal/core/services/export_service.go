package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
)

// ErrUnsupportedFormat indicates a format other than csv, json or xml was requested.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// exportService renders report data to bytes. Decimal cells pass through as
// the exact strings the report builder produced; no format re-parses them.
type exportService struct{}

// NewExportService creates a new ExportService.
func NewExportService() portssvc.ExportSvc {
	return &exportService{}
}

var _ portssvc.ExportSvc = (*exportService)(nil)

// Render renders the report in the given format and returns the bytes plus
// the content type. An empty format defaults to json.
func (s *exportService) Render(report *domain.ReportData, format string) ([]byte, string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		data, err := renderJSON(report)
		return data, "application/json; charset=utf-8", err
	case "csv":
		data, err := renderCSV(report)
		return data, "text/csv; charset=utf-8", err
	case "xml":
		data, err := renderXML(report)
		return data, "application/xml; charset=utf-8", err
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func renderCSV(report *domain.ReportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(report.Columns))
	for i, col := range report.Columns {
		header[i] = col.Label
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	record := make([]string, len(report.Columns))
	for _, row := range report.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = row[i].Value
			}
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// renderJSON emits rows as objects keyed by column key. The object members
// are written by hand so column order survives; encoding/json would sort a
// map alphabetically. Decimal and date cells stay strings, integer cells
// become JSON numbers.
func renderJSON(report *domain.ReportData) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeJSONMember(&buf, "title", report.Title)
	buf.WriteByte(',')
	writeJSONMember(&buf, "generatedAt", report.GeneratedAt.Format(time.RFC3339))
	buf.WriteString(`,"rows":[`)
	for r, row := range report.Rows {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for i, col := range report.Columns {
			if i > 0 {
				buf.WriteByte(',')
			}
			var value string
			if i < len(row) {
				value = row[i].Value
			}
			if col.Kind == domain.CellInteger && value != "" {
				key, err := json.Marshal(col.Key)
				if err != nil {
					return nil, err
				}
				buf.Write(key)
				buf.WriteByte(':')
				buf.WriteString(value)
				continue
			}
			writeJSONMember(&buf, col.Key, value)
		}
		buf.WriteByte('}')
	}
	buf.WriteString("]}")

	// Re-indent through the stdlib so the output matches what clients expect
	// from a JSON API.
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to render json: %w", err)
	}
	return out.Bytes(), nil
}

func writeJSONMember(buf *bytes.Buffer, key, value string) {
	k, _ := json.Marshal(key)
	v, _ := json.Marshal(value)
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
}

type xmlCell struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type xmlRow struct {
	Cells []xmlCell `xml:"cell"`
}

type xmlReport struct {
	XMLName     xml.Name `xml:"report"`
	Title       string   `xml:"title,attr"`
	GeneratedAt string   `xml:"generatedAt,attr"`
	Rows        []xmlRow `xml:"row"`
}

func renderXML(report *domain.ReportData) ([]byte, error) {
	doc := xmlReport{
		Title:       report.Title,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
	}
	for _, row := range report.Rows {
		xr := xmlRow{Cells: make([]xmlCell, len(report.Columns))}
		for i, col := range report.Columns {
			xr.Cells[i].Key = col.Key
			if i < len(row) {
				xr.Cells[i].Value = row[i].Value
			}
		}
		doc.Rows = append(doc.Rows, xr)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render xml: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}
