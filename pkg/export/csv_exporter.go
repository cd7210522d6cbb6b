package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Column is one field of a tabular export. Width is a relative weight used by
// the PDF renderer; zero means an even share.
type Column struct {
	Key    string
	Title  string
	Width  float64
	Align  string
	Format func(string) string
}

// Dataset is tabular export content keyed by column.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
	// Notes are free-form summary lines printed under the PDF table.
	Notes []string
}

func (d Dataset) titles() []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = col.Title
		if out[i] == "" {
			out[i] = col.Key
		}
	}
	return out
}

func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		value := row[col.Key]
		if col.Format != nil {
			value = col.Format(value)
		}
		out[i] = value
	}
	return out
}

// CSVExporter renders datasets as RFC 4180 CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes a header line followed by one record per row. Notes are not
// part of CSV output.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.titles()); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(data.record(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
