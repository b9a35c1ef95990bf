package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/models"
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
	"github.com/noah-isme/tutorial-records/pkg/export"
)

// ReportFormat selects the rendered file type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ParseReportFormat accepts csv or pdf, case-insensitively. Blank means csv.
func ParseReportFormat(raw string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ReportFormatCSV:
		return ReportFormatCSV, nil
	case ReportFormatPDF:
		return ReportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ReportService renders attendance and result reports to files.
type ReportService struct {
	attendance  *AttendanceService
	tutorials   *TutorialService
	assessments *AssessmentService
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewReportService constructs a ReportService writing into storage.
func NewReportService(model *Model, storage fileStorage, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{
		attendance:  model.Attendance,
		tutorials:   model.Tutorials,
		assessments: model.Assessments,
		storage:     storage,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
		now:         time.Now,
	}
}

// ExportAttendance writes the tutorial's attendance grid, one row per student
// and one column per week, followed by the present count. It returns the
// path of the written file.
func (s *ReportService) ExportAttendance(tutorial models.TutorialName, format ReportFormat) (string, error) {
	t, err := s.tutorials.Find(tutorial)
	if err != nil {
		return "", err
	}
	summary, err := s.attendance.Summary(tutorial)
	if err != nil {
		return "", err
	}
	dataset := attendanceDataset(t, summary)
	dataset.Title = fmt.Sprintf("Attendance %s", t.Name)
	dataset.Subtitle = fmt.Sprintf("%s %s, %s, %d weeks", t.Day, t.Time, t.Venue, t.Weeks)
	return s.write("attendance_"+sanitizeFilename(string(tutorial)), dataset, format)
}

// ExportResults writes one tutorial's results for an assessment.
func (s *ReportService) ExportResults(assessment models.AssessmentName, tutorial models.TutorialName, format ReportFormat) (string, error) {
	rows, err := s.assessments.Results(assessment, tutorial)
	if err != nil {
		return "", err
	}
	dataset := export.Dataset{Headers: []string{"Student ID", "Name", "Score", "Max Score"}}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID": row.StudentID.String(),
			"Name":       row.Name.String(),
			"Score":      formatScore(row.Score),
			"Max Score":  formatScore(row.MaxScore),
		})
	}
	dataset.Title = fmt.Sprintf("%s results for %s", assessment, tutorial)
	base := fmt.Sprintf("results_%s_%s", sanitizeFilename(string(assessment)), sanitizeFilename(string(tutorial)))
	return s.write(base, dataset, format)
}

func (s *ReportService) write(base string, dataset export.Dataset, format ReportFormat) (string, error) {
	var payload []byte
	var err error
	switch format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ReportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render report")
	}
	filename := fmt.Sprintf("%s_%s.%s", base, s.now().UTC().Format("20060102_150405"), format)
	rel, err := s.storage.Save(filename, payload)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to store report")
	}
	s.logger.Info("report written", zap.String("file", rel), zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))
	return s.storage.Path(rel), nil
}

func attendanceDataset(t models.Tutorial, summary []models.AttendanceSummary) export.Dataset {
	headers := []string{"Student ID", "Name"}
	for _, w := range t.ActiveWeeks() {
		headers = append(headers, weekHeader(w))
	}
	headers = append(headers, "Present")

	marks := make(map[models.StudentID]map[int]string, len(t.Roster))
	for _, a := range t.Attendance {
		if marks[a.StudentID] == nil {
			marks[a.StudentID] = make(map[int]string, t.Weeks)
		}
		mark := "0"
		if a.Present {
			mark = "1"
		}
		marks[a.StudentID][a.Week] = mark
	}

	rows := make([]map[string]string, 0, len(summary))
	for _, row := range summary {
		record := map[string]string{
			"Student ID": row.StudentID.String(),
			"Name":       row.Name.String(),
			"Present":    fmt.Sprintf("%d/%d", row.Present, row.Total),
		}
		for _, w := range t.ActiveWeeks() {
			record[weekHeader(w)] = marks[row.StudentID][w]
		}
		rows = append(rows, record)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func weekHeader(week int) string { return "W" + strconv.Itoa(week) }

func formatScore(score float64) string { return strconv.FormatFloat(score, 'f', -1, 64) }

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if runes := []rune(result); len(runes) > 100 {
		return string(runes[:100])
	}
	return result
}
