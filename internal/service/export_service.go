package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/internal/models"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
	"github.com/noah-isme/coursehub-client/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(report export.Report) ([]byte, error)
}

// ExportResult describes a written export.
type ExportResult struct {
	Path   string
	Format ExportFormat
	Rows   int
}

// ExportService renders the logged-in user's enrollments to CSV or PDF.
type ExportService struct {
	identity    currentUserProvider
	enrollments enrollmentLister
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(identity currentUserProvider, enrollments enrollmentLister, storage fileStorage, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		identity:    identity,
		enrollments: enrollments,
		storage:     storage,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
		now:         time.Now,
	}
}

// ParseExportFormat accepts "csv" or "pdf" in any case.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case ExportFormatCSV, ExportFormatPDF:
		return f, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// ExportEnrollments writes the user's enrollments, newest first, to filename
// (generated when empty) and returns where it went.
func (s *ExportService) ExportEnrollments(ctx context.Context, format ExportFormat, filename string) (*ExportResult, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	enrollments := LatestEnrollments(s.enrollments.ListEnrollments(ctx, user.ID), -1)
	dataset, err := enrollmentDataset(enrollments)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build export")
	}

	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(*dataset)
	case ExportFormatPDF:
		stats := ComputeStats(enrollments)
		payload, err = s.pdf.Render(export.Report{
			Title: fmt.Sprintf("Enrollments of %s", WelcomeName(*user)),
			Summary: []string{
				fmt.Sprintf("Total courses: %d", stats.Total),
				fmt.Sprintf("Completed: %d  In progress: %d  Not started: %d", stats.Completed, stats.InProgress, stats.NotStarted),
				fmt.Sprintf("Average progress: %.1f%%", stats.AverageProgress),
				fmt.Sprintf("Generated: %s", s.now().UTC().Format(time.RFC3339)),
			},
			Data:   *dataset,
			Widths: []float64{4, 3, 1.2, 1.6},
		})
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	if strings.TrimSpace(filename) == "" {
		filename = s.buildFilename(user.ID, format)
	}
	path, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save export")
	}
	s.logger.Info("enrollments exported", zap.String("path", path), zap.String("format", string(format)), zap.Int("rows", len(enrollments)))
	return &ExportResult{Path: path, Format: format, Rows: len(enrollments)}, nil
}

func enrollmentDataset(enrollments []models.Enrollment) (*export.Dataset, error) {
	data := export.NewDataset("Course", "Enrolled At", "Progress", "Status")
	for _, e := range enrollments {
		if err := data.AddRow(
			e.CourseTitle,
			e.EnrolledAt.UTC().Format("2006-01-02 15:04"),
			strconv.Itoa(e.Progress)+"%",
			string(e.Status),
		); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (s *ExportService) buildFilename(userID models.ID, format ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("enrollments_%s_%s.%s", sanitizeFilename(userID.String()), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
