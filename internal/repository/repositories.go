package repository

import (
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/internal/models"
)

// Collection names on the backend.
const (
	CollectionUsers       = "users"
	CollectionCourses     = "courses"
	CollectionEnrollments = "enrollments"
	CollectionContacts    = "contacts"
)

// Repositories groups the REST repositories. Users live on their own service;
// courses, enrollments, and contacts share the catalog service.
type Repositories struct {
	Users       *UserRepository
	Courses     *CourseRepository
	Enrollments *EnrollmentRepository
	Contacts    *ContactRepository
}

// New builds every repository from the two backend clients.
func New(users, catalog *resty.Client, logger *zap.Logger, metrics requestObserver) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(NewCollection[models.User](users, CollectionUsers, logger, metrics)),
		Courses:     NewCourseRepository(NewCollection[models.Course](catalog, CollectionCourses, logger, metrics)),
		Enrollments: NewEnrollmentRepository(NewCollection[models.Enrollment](catalog, CollectionEnrollments, logger, metrics)),
		Contacts:    NewContactRepository(NewCollection[models.Contact](catalog, CollectionContacts, logger, metrics)),
	}
}
