package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-client/internal/models"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments []models.Enrollment
	queryErr    error
	createErr   error
	updates     map[string]models.ProgressUpdate
}

func (m *mockEnrollmentRepo) ListByUser(ctx context.Context, userID models.ID) []models.Enrollment {
	out := []models.Enrollment{}
	for _, e := range m.enrollments {
		if e.UserID.Same(userID) {
			out = append(out, e)
		}
	}
	return out
}

func (m *mockEnrollmentRepo) FindByUserAndCourse(ctx context.Context, userID, courseID models.ID) ([]models.Enrollment, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	out := []models.Enrollment{}
	for _, e := range m.enrollments {
		if e.UserID.Same(userID) && e.CourseID.Same(courseID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment models.Enrollment) (*models.Enrollment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	enrollment.ID = models.NewID(string(rune('0' + len(m.enrollments) + 1)))
	m.enrollments = append(m.enrollments, enrollment)
	return &enrollment, nil
}

func (m *mockEnrollmentRepo) UpdateProgress(ctx context.Context, id models.ID, update models.ProgressUpdate) bool {
	if m.updates == nil {
		m.updates = make(map[string]models.ProgressUpdate)
	}
	for i := range m.enrollments {
		if m.enrollments[i].ID.Same(id) {
			m.enrollments[i].Progress = update.Progress
			m.enrollments[i].Status = update.Status
			m.updates[id.String()] = update
			return true
		}
	}
	return false
}

type mockCourseReader struct {
	courses []models.Course
	byID    int
}

func (m *mockCourseReader) FindByID(ctx context.Context, id models.ID) (*models.Course, bool) {
	m.byID++
	for i := range m.courses {
		if m.courses[i].ID.Same(id) {
			return &m.courses[i], true
		}
	}
	return nil, false
}

func (m *mockCourseReader) FindByTitle(ctx context.Context, title string) (*models.Course, bool) {
	for i := range m.courses {
		if m.courses[i].Title == title {
			return &m.courses[i], true
		}
	}
	return nil, false
}

type mockIdentity struct {
	user *models.SessionUser
	err  error
}

func (m *mockIdentity) CurrentUser(ctx context.Context) (*models.SessionUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "")
	}
	return m.user, nil
}

type mockEnrollmentRecorder struct {
	outcomes []string
}

func (m *mockEnrollmentRecorder) RecordEnrollment(outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)

type enrollmentFixture struct {
	svc      *EnrollmentService
	repo     *mockEnrollmentRepo
	courses  *mockCourseReader
	identity *mockIdentity
	recorder *mockEnrollmentRecorder
}

func newEnrollmentFixture(cfg EnrollmentConfig) *enrollmentFixture {
	f := &enrollmentFixture{
		repo:     &mockEnrollmentRepo{},
		courses:  &mockCourseReader{courses: []models.Course{{ID: models.NewID("7"), Title: "Go Basics"}, {ID: models.NewID("8"), Title: "Advanced Go"}}},
		identity: &mockIdentity{user: &models.SessionUser{ID: models.NewID("1"), Name: "Ada", Email: "ada@example.com"}},
		recorder: &mockEnrollmentRecorder{},
	}
	f.svc = NewEnrollmentService(f.repo, f.courses, f.identity, nil, nil, f.recorder, cfg)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func TestEnrollCreatesEnrollment(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})

	enrollment, err := f.svc.Enroll(context.Background(), EnrollRequest{CourseID: models.NewID("7")})
	require.NoError(t, err)
	assert.Equal(t, models.NewID("1"), enrollment.UserID)
	assert.Equal(t, "Go Basics", enrollment.CourseTitle)
	assert.Equal(t, 0, enrollment.Progress)
	assert.Equal(t, models.EnrollmentStatusNotStarted, enrollment.Status)
	assert.Equal(t, fixedNow.Truncate(time.Millisecond), enrollment.EnrolledAt)
	assert.Equal(t, []string{OutcomeCreated}, f.recorder.outcomes)
}

func TestEnrollStoresCourseIDAsTheBackendSentIt(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})
	f.courses.courses = append(f.courses.courses, models.Course{ID: models.NumberID("9"), Title: "Concurrency"})

	enrollment, err := f.svc.Enroll(context.Background(), EnrollRequest{CourseID: models.NewID("9")})
	require.NoError(t, err)
	assert.Equal(t, models.NumberID("9"), enrollment.CourseID)
	assert.Equal(t, "Concurrency", enrollment.CourseTitle)
}

func TestEnrollUsesSuppliedTitle(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{InitialStatus: models.EnrollmentStatusInProgress})

	enrollment, err := f.svc.Enroll(context.Background(), EnrollRequest{CourseID: models.NewID("7"), CourseTitle: "Custom"})
	require.NoError(t, err)
	assert.Equal(t, "Custom", enrollment.CourseTitle)
	assert.Equal(t, models.EnrollmentStatusInProgress, enrollment.Status)
	assert.Zero(t, f.courses.byID)
}

func TestEnrollTwiceYieldsOneRecordAndConflict(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})
	ctx := context.Background()

	_, err := f.svc.Enroll(ctx, EnrollRequest{CourseID: models.NewID("7")})
	require.NoError(t, err)
	_, err = f.svc.Enroll(ctx, EnrollRequest{CourseID: models.NewID("7")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, MsgAlreadyEnrolled, err.Error())
	assert.Len(t, f.repo.enrollments, 1)
	assert.Equal(t, []string{OutcomeCreated, OutcomeConflict}, f.recorder.outcomes)
}

func TestEnrollRequiresSession(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})
	f.identity.user = nil

	_, err := f.svc.Enroll(context.Background(), EnrollRequest{CourseID: models.NewID("7")})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotAuthenticated.Code))
	assert.Empty(t, f.repo.enrollments)
	assert.Equal(t, []string{OutcomeUnauthenticated}, f.recorder.outcomes)
}

func TestEnrollDuplicateCheckFailurePropagates(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})
	f.repo.queryErr = appErrors.Clone(appErrors.ErrTransport, "GET enrollments failed")

	_, err := f.svc.Enroll(context.Background(), EnrollRequest{CourseID: models.NewID("7")})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrTransport.Code))
	assert.Empty(t, f.repo.enrollments)
}

func TestEnrollUnknownCourse(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})

	_, err := f.svc.Enroll(context.Background(), EnrollRequest{CourseID: models.NewID("99")})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
	assert.Equal(t, MsgCourseNotFound, err.Error())

	_, err = f.svc.Enroll(context.Background(), EnrollRequest{})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestEnrollCreateFailure(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})
	f.repo.createErr = errors.New("502")

	_, err := f.svc.Enroll(context.Background(), EnrollRequest{CourseID: models.NewID("7")})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrTransport.Code))

	f.repo.createErr = appErrors.Clone(appErrors.ErrConflict, "enrollments record conflicts with an existing one")
	_, err = f.svc.Enroll(context.Background(), EnrollRequest{CourseID: models.NewID("7")})
	assert.Equal(t, MsgAlreadyEnrolled, err.Error())
}

func TestEnrollByTitle(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})

	enrollment, err := f.svc.EnrollByTitle(context.Background(), "Advanced Go")
	require.NoError(t, err)
	assert.Equal(t, models.NewID("8"), enrollment.CourseID)

	_, err = f.svc.EnrollByTitle(context.Background(), "Missing")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	_, err = f.svc.EnrollByTitle(context.Background(), "Advanced Go")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrConflict.Code))
}

func TestInitialStatusFallsBackToNotStarted(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{InitialStatus: models.EnrollmentStatusCompleted})

	enrollment, err := f.svc.Enroll(context.Background(), EnrollRequest{CourseID: models.NewID("7")})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusNotStarted, enrollment.Status)
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats([]models.Enrollment{{Progress: 0}, {Progress: 50}, {Progress: 100}})
	assert.Equal(t, models.EnrollmentStats{Total: 3, Completed: 1, InProgress: 1, NotStarted: 1, AverageProgress: 50}, stats)

	assert.Equal(t, models.EnrollmentStats{}, ComputeStats(nil))
}

func TestUpdateProgressClamps(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})
	f.repo.enrollments = []models.Enrollment{{ID: models.NewID("5"), UserID: models.NewID("1"), CourseID: models.NewID("7")}}
	ctx := context.Background()

	require.True(t, f.svc.UpdateProgress(ctx, models.NewID("5"), 150))
	assert.Equal(t, models.ProgressUpdate{Progress: 100, Status: models.EnrollmentStatusCompleted}, f.repo.updates["5"])

	require.True(t, f.svc.UpdateProgress(ctx, models.NewID("5"), -10))
	assert.Equal(t, models.ProgressUpdate{Progress: 0, Status: models.EnrollmentStatusInProgress}, f.repo.updates["5"])

	assert.False(t, f.svc.UpdateProgress(ctx, models.NewID("404"), 10))
}

func TestRecentEnrollments(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	t3 := t2.Add(24 * time.Hour)
	f.repo.enrollments = []models.Enrollment{
		{ID: models.NewID("1"), UserID: models.NewID("1"), EnrolledAt: t1},
		{ID: models.NewID("3"), UserID: models.NewID("1"), EnrolledAt: t3},
		{ID: models.NewID("2"), UserID: models.NewID("1"), EnrolledAt: t2},
		{ID: models.NewID("4"), UserID: models.NewID("2"), EnrolledAt: t3.Add(time.Hour)},
	}

	recent := f.svc.RecentEnrollments(context.Background(), 2)
	require.Len(t, recent, 2)
	assert.Equal(t, t3, recent[0].EnrolledAt)
	assert.Equal(t, t2, recent[1].EnrolledAt)

	assert.Len(t, f.svc.RecentEnrollments(context.Background(), -1), 3)
	assert.Empty(t, f.svc.RecentEnrollments(context.Background(), 0))
}

func TestRecentEnrollmentsUsesConfiguredDefault(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{RecentLimit: 1})
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.repo.enrollments = []models.Enrollment{
		{ID: models.NewID("1"), UserID: models.NewID("1"), EnrolledAt: t1},
		{ID: models.NewID("2"), UserID: models.NewID("1"), EnrolledAt: t1.Add(time.Hour)},
	}

	recent := f.svc.RecentEnrollments(context.Background(), -1)
	require.Len(t, recent, 1)
	assert.Equal(t, "2", recent[0].ID.String())
}

func TestListEnrollmentsWithoutUserIsEmpty(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})
	f.repo.enrollments = []models.Enrollment{{ID: models.NewID("1"), UserID: models.NewID("2")}}
	f.identity.user = nil

	assert.Empty(t, f.svc.ListEnrollments(context.Background(), models.ID{}))
	assert.Len(t, f.svc.ListEnrollments(context.Background(), models.NewID("2")), 1)
	assert.False(t, f.svc.IsEnrolled(context.Background(), models.ID{}, models.NewID("7")))
	assert.Equal(t, models.EnrollmentStats{}, f.svc.Stats(context.Background()))
}

func TestIsEnrolled(t *testing.T) {
	f := newEnrollmentFixture(EnrollmentConfig{})
	f.repo.enrollments = []models.Enrollment{{ID: models.NewID("1"), UserID: models.NewID("1"), CourseID: models.NewID("7")}}

	assert.True(t, f.svc.IsEnrolled(context.Background(), models.ID{}, models.NewID("7")))
	assert.False(t, f.svc.IsEnrolled(context.Background(), models.ID{}, models.NewID("8")))

	f.repo.queryErr = errors.New("down")
	assert.False(t, f.svc.IsEnrolled(context.Background(), models.NewID("1"), models.NewID("7")))
}
