package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/internal/models"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
	"github.com/noah-isme/coursehub-client/pkg/validation"
)

// User-facing enrollment messages.
const (
	MsgAlreadyEnrolled = "Already enrolled in this course"
	MsgCourseNotFound  = "Course not found"
	MsgEnrollFailed    = "Failed to enroll in course"
)

// DefaultRecentLimit is used when RecentEnrollments is called with a negative limit.
const DefaultRecentLimit = 5

type enrollmentRepository interface {
	ListByUser(ctx context.Context, userID models.ID) []models.Enrollment
	FindByUserAndCourse(ctx context.Context, userID, courseID models.ID) ([]models.Enrollment, error)
	Create(ctx context.Context, enrollment models.Enrollment) (*models.Enrollment, error)
	UpdateProgress(ctx context.Context, id models.ID, update models.ProgressUpdate) bool
}

type courseReader interface {
	FindByID(ctx context.Context, id models.ID) (*models.Course, bool)
	FindByTitle(ctx context.Context, title string) (*models.Course, bool)
}

type currentUserProvider interface {
	CurrentUser(ctx context.Context) (*models.SessionUser, error)
}

type enrollmentRecorder interface {
	RecordEnrollment(outcome string)
}

// EnrollRequest describes an enrollment. CourseTitle is looked up when empty.
type EnrollRequest struct {
	CourseID    models.ID `json:"courseId" validate:"required"`
	CourseTitle string    `json:"courseTitle"`
}

// EnrollmentConfig tunes enrollment creation.
type EnrollmentConfig struct {
	// InitialStatus labels a new enrollment; "Not Started" or "In Progress".
	InitialStatus models.EnrollmentStatus
	RecentLimit   int
}

// EnrollmentService orchestrates enrollment workflows.
type EnrollmentService struct {
	enrollments enrollmentRepository
	courses     courseReader
	identity    currentUserProvider
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     enrollmentRecorder
	cfg         EnrollmentConfig
	now         func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(enrollments enrollmentRepository, courses courseReader, identity currentUserProvider, validate *validator.Validate, logger *zap.Logger, metrics enrollmentRecorder, cfg EnrollmentConfig) *EnrollmentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.InitialStatus {
	case models.EnrollmentStatusNotStarted, models.EnrollmentStatusInProgress:
	case "":
		cfg.InitialStatus = models.EnrollmentStatusNotStarted
	default:
		logger.Warn("unsupported initial enrollment status, using default",
			zap.String("status", string(cfg.InitialStatus)),
			zap.String("default", string(models.EnrollmentStatusNotStarted)))
		cfg.InitialStatus = models.EnrollmentStatusNotStarted
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultRecentLimit
	}
	return &EnrollmentService{
		enrollments: enrollments,
		courses:     courses,
		identity:    identity,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Enroll creates an enrollment of the logged-in user in req.CourseID.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	return s.enroll(ctx, user, req.CourseID, strings.TrimSpace(req.CourseTitle))
}

// EnrollByTitle resolves the course by its exact title, then enrolls.
func (s *EnrollmentService) EnrollByTitle(ctx context.Context, title string) (*models.Enrollment, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	course, ok := s.courses.FindByTitle(ctx, strings.TrimSpace(title))
	if !ok {
		s.record(OutcomeNotFound)
		return nil, appErrors.Clone(appErrors.ErrNotFound, MsgCourseNotFound)
	}
	return s.enroll(ctx, user, course.ID, course.Title)
}

func (s *EnrollmentService) enroll(ctx context.Context, user *models.SessionUser, courseID models.ID, title string) (*models.Enrollment, error) {
	existing, err := s.enrollments.FindByUserAndCourse(ctx, user.ID, courseID)
	if err != nil {
		s.record(OutcomeFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "failed to check existing enrollment")
	}
	if len(existing) > 0 {
		s.record(OutcomeConflict)
		return nil, appErrors.Clone(appErrors.ErrConflict, MsgAlreadyEnrolled)
	}

	if title == "" {
		course, ok := s.courses.FindByID(ctx, courseID)
		if !ok {
			s.record(OutcomeNotFound)
			return nil, appErrors.Clone(appErrors.ErrNotFound, MsgCourseNotFound)
		}
		// The backend's id keeps the JSON kind the user's input lacks.
		courseID, title = course.ID, course.Title
	}

	enrollment := models.Enrollment{
		UserID:      user.ID,
		CourseID:    courseID,
		CourseTitle: title,
		EnrolledAt:  s.now().UTC().Truncate(time.Millisecond),
		Progress:    models.MinProgress,
		Status:      s.cfg.InitialStatus,
	}

	created, err := s.enrollments.Create(ctx, enrollment)
	if err != nil {
		if appErrors.IsCode(err, appErrors.ErrConflict.Code) {
			s.record(OutcomeConflict)
			return nil, appErrors.Clone(appErrors.ErrConflict, MsgAlreadyEnrolled)
		}
		s.record(OutcomeFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, MsgEnrollFailed)
	}

	s.record(OutcomeCreated)
	s.logger.Info("enrollment created",
		zap.String("enrollment_id", created.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("course_id", courseID.String()))
	return created, nil
}

// IsEnrolled reports whether userID (the logged-in user when empty) is enrolled
// in courseID. Any failure reads as false.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID, courseID models.ID) bool {
	if userID.IsZero() {
		user, err := s.identity.CurrentUser(ctx)
		if err != nil {
			return false
		}
		userID = user.ID
	}
	existing, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		s.logger.Warn("enrollment check failed", zap.Error(err))
		return false
	}
	return len(existing) > 0
}

// ListEnrollments returns the enrollments of userID, or of the logged-in user when
// userID is empty. Without a user the result is empty.
func (s *EnrollmentService) ListEnrollments(ctx context.Context, userID models.ID) []models.Enrollment {
	if userID.IsZero() {
		user, err := s.identity.CurrentUser(ctx)
		if err != nil {
			return []models.Enrollment{}
		}
		userID = user.ID
	}
	return s.enrollments.ListByUser(ctx, userID)
}

// RecentEnrollments returns up to limit of the logged-in user's newest enrollments,
// newest first. A limit of zero returns none; a negative limit means the
// configured RecentLimit.
func (s *EnrollmentService) RecentEnrollments(ctx context.Context, limit int) []models.Enrollment {
	if limit == 0 {
		return []models.Enrollment{}
	}
	if limit < 0 {
		limit = s.cfg.RecentLimit
	}
	return LatestEnrollments(s.ListEnrollments(ctx, models.ID{}), limit)
}

// Stats aggregates the logged-in user's enrollments.
func (s *EnrollmentService) Stats(ctx context.Context) models.EnrollmentStats {
	return ComputeStats(s.ListEnrollments(ctx, models.ID{}))
}

// UpdateProgress clamps progress to [0, 100] and stores it with the matching status.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, id models.ID, progress int) bool {
	clamped := models.ClampProgress(progress)
	return s.enrollments.UpdateProgress(ctx, id, models.ProgressUpdate{
		Progress: clamped,
		Status:   models.StatusAfterUpdate(clamped),
	})
}

// ComputeStats counts enrollments by phase and averages progress.
func ComputeStats(enrollments []models.Enrollment) models.EnrollmentStats {
	stats := models.EnrollmentStats{Total: len(enrollments)}
	if len(enrollments) == 0 {
		return stats
	}
	sum := 0
	for _, e := range enrollments {
		sum += e.Progress
		phase, ok := e.Phase()
		if !ok {
			continue
		}
		switch phase {
		case models.EnrollmentStatusCompleted:
			stats.Completed++
		case models.EnrollmentStatusInProgress:
			stats.InProgress++
		case models.EnrollmentStatusNotStarted:
			stats.NotStarted++
		}
	}
	stats.AverageProgress = float64(sum) / float64(len(enrollments))
	return stats
}

// LatestEnrollments sorts a copy of enrollments by EnrolledAt descending and keeps
// at most limit of them.
func LatestEnrollments(enrollments []models.Enrollment, limit int) []models.Enrollment {
	sorted := make([]models.Enrollment, len(enrollments))
	copy(sorted, enrollments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EnrolledAt.After(sorted[j].EnrolledAt)
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func (s *EnrollmentService) currentUser(ctx context.Context) (*models.SessionUser, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		if appErrors.IsCode(err, appErrors.ErrNotAuthenticated.Code) {
			s.record(OutcomeUnauthenticated)
		} else {
			s.record(OutcomeFailed)
		}
		return nil, err
	}
	return user, nil
}

func (s *EnrollmentService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordEnrollment(outcome)
	}
}
