package service

import (
	"context"
	"strings"

	"github.com/noah-isme/coursehub-client/internal/models"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
)

type courseCatalog interface {
	List(ctx context.Context) []models.Course
	FindByID(ctx context.Context, id models.ID) (*models.Course, bool)
	FindByTitle(ctx context.Context, title string) (*models.Course, bool)
}

// CourseService exposes the read-only course catalog.
type CourseService struct {
	courses courseCatalog
}

// NewCourseService constructs CourseService.
func NewCourseService(courses courseCatalog) *CourseService {
	return &CourseService{courses: courses}
}

// List returns every course, or an empty slice when the catalog is unreachable.
func (s *CourseService) List(ctx context.Context) []models.Course {
	return s.courses.List(ctx)
}

// Get returns one course.
func (s *CourseService) Get(ctx context.Context, id models.ID) (*models.Course, error) {
	course, ok := s.courses.FindByID(ctx, id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, MsgCourseNotFound)
	}
	return course, nil
}

// FindByTitle returns the course whose title matches exactly.
func (s *CourseService) FindByTitle(ctx context.Context, title string) (*models.Course, error) {
	course, ok := s.courses.FindByTitle(ctx, strings.TrimSpace(title))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, MsgCourseNotFound)
	}
	return course, nil
}
