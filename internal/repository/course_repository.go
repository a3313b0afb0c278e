package repository

import (
	"context"

	"github.com/noah-isme/coursehub-client/internal/models"
)

// CourseRepository reads the course catalog. Every read degrades to empty/absent.
type CourseRepository struct {
	courses *Collection[models.Course]
}

// NewCourseRepository wraps the courses collection.
func NewCourseRepository(courses *Collection[models.Course]) *CourseRepository {
	return &CourseRepository{courses: courses}
}

// List returns every course.
func (r *CourseRepository) List(ctx context.Context) []models.Course {
	return r.courses.List(ctx, nil)
}

// FindByID returns the course with id.
func (r *CourseRepository) FindByID(ctx context.Context, id models.ID) (*models.Course, bool) {
	return r.courses.Get(ctx, id.String())
}

// FindByTitle returns the first course whose title equals title exactly.
func (r *CourseRepository) FindByTitle(ctx context.Context, title string) (*models.Course, bool) {
	courses := r.courses.List(ctx, Filter{"title": title})
	for i := range courses {
		if courses[i].Title == title {
			return &courses[i], true
		}
	}
	return nil, false
}
