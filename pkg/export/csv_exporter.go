package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a table with positional rows.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// NewDataset starts a dataset with the given column headers.
func NewDataset(headers ...string) *Dataset {
	return &Dataset{Headers: headers}
}

// AddRow appends one row; it must have one value per header.
func (d *Dataset) AddRow(values ...string) error {
	if len(values) != len(d.Headers) {
		return fmt.Errorf("row has %d values, want %d", len(values), len(d.Headers))
	}
	d.Rows = append(d.Rows, values)
	return nil
}

// CSVExporter renders a Dataset as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(data.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
