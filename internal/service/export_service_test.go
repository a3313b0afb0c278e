package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-client/internal/models"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
	"github.com/noah-isme/coursehub-client/pkg/export"
)

type memoryStorage struct {
	files map[string][]byte
}

func (m *memoryStorage) Save(filename string, data []byte) (string, error) {
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[filename] = data
	return filepath.Join("/exports", filename), nil
}

type capturingPDF struct {
	report export.Report
}

func (c *capturingPDF) Render(report export.Report) ([]byte, error) {
	c.report = report
	return []byte("%PDF-fake"), nil
}

func newExportFixture() (*ExportService, *memoryStorage, *capturingPDF) {
	lister := &mockEnrollmentLister{enrollments: []models.Enrollment{
		{CourseTitle: "Go Basics", Progress: 100, Status: models.EnrollmentStatusCompleted, EnrolledAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		{CourseTitle: "Advanced Go", Progress: 0, Status: models.EnrollmentStatusNotStarted, EnrolledAt: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)},
	}}
	identity := &mockIdentity{user: &models.SessionUser{ID: models.NewID("1"), Name: "Ada", Email: "ada@example.com"}}
	store := &memoryStorage{}
	pdf := &capturingPDF{}
	svc := NewExportService(identity, lister, store, nil, nil, pdf)
	svc.now = func() time.Time { return fixedNow }
	return svc, store, pdf
}

func TestExportEnrollmentsCSV(t *testing.T) {
	svc, store, _ := newExportFixture()

	result, err := svc.ExportEnrollments(context.Background(), ExportFormatCSV, "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, "/exports/enrollments_1_20240506_070809.csv", result.Path)

	lines := strings.Split(strings.TrimSpace(string(store.files["enrollments_1_20240506_070809.csv"])), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Course,Enrolled At,Progress,Status", lines[0])
	assert.Equal(t, "Advanced Go,2024-02-01 09:00,0%,Not Started", lines[1])
}

func TestExportEnrollmentsPDF(t *testing.T) {
	svc, store, pdf := newExportFixture()

	result, err := svc.ExportEnrollments(context.Background(), ExportFormatPDF, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, result.Format)
	assert.Contains(t, store.files, "report.pdf")
	assert.Equal(t, "Enrollments of Ada", pdf.report.Title)
	assert.Contains(t, pdf.report.Summary, "Average progress: 50.0%")
}

func TestExportRequiresSessionAndFormat(t *testing.T) {
	svc, _, _ := newExportFixture()
	svc.identity = &mockIdentity{}

	_, err := svc.ExportEnrollments(context.Background(), ExportFormatCSV, "")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotAuthenticated.Code))

	_, err = ParseExportFormat("xlsx")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
	format, err := ParseExportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, format)
}
