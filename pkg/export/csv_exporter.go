package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVContentType is the MIME type of CSVExporter output.
const CSVContentType = "text/csv; charset=utf-8"

// formulaPrefixes make spreadsheet applications evaluate a cell.
const formulaPrefixes = "=+-@\t\r"

// CSVExporter renders a Dataset as CSV with a header row.
type CSVExporter struct {
	// ExcelBOM prepends a UTF-8 byte order mark so Excel detects the encoding.
	ExcelBOM bool
}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. Missing cells are empty
// and user text that would start a spreadsheet formula is quoted with a
// leading apostrophe.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	if e.ExcelBOM {
		buf.WriteString("\ufeff")
	}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for n, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = neutralize(row[header])
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", n+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func neutralize(cell string) string {
	if cell != "" && strings.ContainsRune(formulaPrefixes, rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
