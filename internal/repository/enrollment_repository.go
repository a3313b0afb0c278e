package repository

import (
	"context"

	"github.com/noah-isme/coursehub-client/internal/models"
)

// EnrollmentRepository talks to the enrollments collection.
type EnrollmentRepository struct {
	enrollments *Collection[models.Enrollment]
}

// NewEnrollmentRepository wraps the enrollments collection.
func NewEnrollmentRepository(enrollments *Collection[models.Enrollment]) *EnrollmentRepository {
	return &EnrollmentRepository{enrollments: enrollments}
}

// ListByUser returns the user's enrollments, or an empty slice on failure.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID models.ID) []models.Enrollment {
	return r.enrollments.List(ctx, Filter{"userId": userID.String()})
}

// FindByUserAndCourse returns the enrollments for the pair. Failures propagate
// because the enrollment workflow must not create on an unknown answer.
func (r *EnrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID models.ID) ([]models.Enrollment, error) {
	return r.enrollments.Query(ctx, Filter{"userId": userID.String(), "courseId": courseID.String()})
}

// Create stores a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment models.Enrollment) (*models.Enrollment, error) {
	return r.enrollments.Create(ctx, enrollment)
}

// UpdateProgress patches progress and status.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id models.ID, update models.ProgressUpdate) bool {
	return r.enrollments.Update(ctx, id.String(), update)
}
