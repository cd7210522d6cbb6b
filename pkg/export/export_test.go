package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Columns: []Column{
			{Key: "date", Title: "Date", Width: 2},
			{Key: "subject", Title: "Subject", Width: 3},
			{Key: "hours", Title: "Hours", Align: "R", Format: func(v string) string { return v + "h" }},
		},
		Rows: []map[string]string{
			{"date": "2024-01-01", "subject": "Math", "hours": "1.5"},
			{"date": "2024-01-02", "subject": "Physics, Waves", "hours": "2"},
		},
		Notes: []string{"Total study hours: 3.5"},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Subject,Hours", lines[0])
	assert.Equal(t, "2024-01-01,Math,1.5h", lines[1])
	assert.Equal(t, `2024-01-02,"Physics, Waves",2h`, lines[2])
}

func TestCSVExporterRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 60; i++ {
		data.Rows = append(data.Rows, map[string]string{"date": "2024-01-03", "subject": "Chemistry", "hours": "1"})
	}

	out, err := NewPDFExporter().Render(data, "Study plan")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFExporterRequiresColumns(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestColumnWidthsSpanPage(t *testing.T) {
	widths := columnWidths(sampleDataset().Columns)

	require.Len(t, widths, 3)
	assert.InDelta(t, pageWidth, widths[0]+widths[1]+widths[2], 1e-9)
	assert.InDelta(t, widths[0]*1.5, widths[1], 1e-9)
}
