package service

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// PlanExporter turns a generated plan into a timetable document.
type PlanExporter struct {
	csv csvRenderer
	pdf pdfRenderer
}

// NewPlanExporter builds an exporter; nil renderers fall back to pkg/export.
func NewPlanExporter(csv csvRenderer, pdf pdfRenderer) *PlanExporter {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &PlanExporter{csv: csv, pdf: pdf}
}

// Supports reports whether format can be rendered.
func (e *PlanExporter) Supports(format string) bool {
	return format == ExportFormatCSV || format == ExportFormatPDF
}

// Render builds the document for plan in the requested format.
func (e *PlanExporter) Render(plan *dto.StudyPlanResponse, req dto.StudyPlanRequest, format string) (*ExportFile, error) {
	data := timetableDataset(plan)
	base := fmt.Sprintf("study-plan_%s_%s", req.StartDate, req.EndDate)

	switch format {
	case ExportFormatCSV:
		body, err := e.csv.Render(data)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
	case ExportFormatPDF:
		title := "Study plan " + req.StartDate + " to " + req.EndDate
		if req.UserProfile.Name != "" {
			title += " for " + req.UserProfile.Name
		}
		body, err := e.pdf.Render(data, title)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	}
	return nil, fmt.Errorf("unsupported format %s", format)
}

func timetableDataset(plan *dto.StudyPlanResponse) export.Dataset {
	data := export.Dataset{
		Columns: []export.Column{
			{Key: "date", Title: "Date", Width: 2},
			{Key: "start", Title: "Start", Width: 1, Align: "C"},
			{Key: "end", Title: "End", Width: 1, Align: "C"},
			{Key: "subject", Title: "Subject", Width: 3},
			{Key: "topic", Title: "Topic", Width: 4},
			{Key: "type", Title: "Type", Width: 1.5},
			{Key: "hours", Title: "Hours", Width: 1, Align: "R"},
		},
	}
	for _, day := range plan.Days {
		for _, s := range day.Sessions {
			data.Rows = append(data.Rows, map[string]string{
				"date":    day.Date,
				"start":   s.StartTime,
				"end":     s.EndTime,
				"subject": s.Subject,
				"topic":   s.Topic,
				"type":    s.SessionType,
				"hours":   formatHours(s.DurationHours),
			})
		}
	}

	data.Notes = append(data.Notes,
		fmt.Sprintf("Scheduled %s of %s hours needed, %s hours available.",
			formatHours(plan.TotalStudyHours), formatHours(plan.TotalHoursNeeded), formatHours(plan.AvailableHours)),
	)
	subjects := make([]string, 0, len(plan.SubjectsDistribution))
	for name := range plan.SubjectsDistribution {
		subjects = append(subjects, name)
	}
	sort.Strings(subjects)
	for _, name := range subjects {
		data.Notes = append(data.Notes, fmt.Sprintf("%s: %s h", name, formatHours(plan.SubjectsDistribution[name])))
	}
	if plan.InsufficientTime {
		data.Notes = append(data.Notes, "Not enough time to cover every topic:")
		for _, t := range plan.UnallocatedTopics {
			data.Notes = append(data.Notes, fmt.Sprintf("  %s / %s: %s h left", t.Subject, t.Topic, formatHours(t.HoursRemaining)))
		}
	}
	return data
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
