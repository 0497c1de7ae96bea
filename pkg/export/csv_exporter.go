package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a rendered score recap: header labels plus one map per row,
// keyed by header. Missing cells render empty, matching how the views
// degrade when a student or class link is unresolved.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter writes a recap as comma-separated values.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render encodes the recap. Rows are emitted in dataset order; the header
// row always comes first.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv recap requires headers")
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write recap header: %w", err)
	}

	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write recap row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush recap: %w", err)
	}
	return buf.Bytes(), nil
}
