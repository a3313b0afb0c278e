// Package cli is the interactive front end of the course platform client: a
// line-oriented REPL over the auth, catalog, enrollment, contact, and export
// services.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/internal/models"
	"github.com/noah-isme/coursehub-client/internal/service"
	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
	"github.com/noah-isme/coursehub-client/pkg/validation"
)

// MsgLoginRequired is shown when a protected command runs without a session.
const MsgLoginRequired = "You must be logged in to access this page."

type authService interface {
	Signup(ctx context.Context, form validation.SignupForm) (*models.User, error)
	Login(ctx context.Context, form validation.LoginForm) (*models.Session, error)
	Logout(ctx context.Context) error
	RequireSession(ctx context.Context) (*models.Session, error)
	CurrentUser(ctx context.Context) (*models.SessionUser, error)
}

type courseService interface {
	List(ctx context.Context) []models.Course
}

type enrollmentService interface {
	Enroll(ctx context.Context, req service.EnrollRequest) (*models.Enrollment, error)
	EnrollByTitle(ctx context.Context, title string) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, userID models.ID) []models.Enrollment
	RecentEnrollments(ctx context.Context, limit int) []models.Enrollment
	Stats(ctx context.Context) models.EnrollmentStats
	UpdateProgress(ctx context.Context, id models.ID, progress int) bool
}

type contactService interface {
	Submit(ctx context.Context, req service.ContactRequest) (*models.Contact, error)
	Search(ctx context.Context, query string) []models.Contact
	UpdateStatus(ctx context.Context, id models.ID, status models.ContactStatus) error
	Stats(ctx context.Context) models.ContactStats
}

type dashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

type exportService interface {
	ExportEnrollments(ctx context.Context, format service.ExportFormat, filename string) (*service.ExportResult, error)
}

type metricsSnapshotter interface {
	Snapshot() models.ClientMetrics
}

// Deps groups the services the App drives.
type Deps struct {
	Auth        authService
	Courses     courseService
	Enrollments enrollmentService
	Contacts    contactService
	Dashboard   dashboardService
	Export      exportService
	Metrics     metricsSnapshotter
	Logger      *zap.Logger
}

// App executes REPL commands. It reads prompts from in and writes to out.
type App struct {
	auth        authService
	courses     courseService
	enrollments enrollmentService
	contacts    contactService
	dashboard   dashboardService
	export      exportService
	metrics     metricsSnapshotter
	logger      *zap.Logger

	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires an App over the given services and streams.
func NewApp(deps Deps, in io.Reader, out io.Writer) *App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		auth:        deps.Auth,
		courses:     deps.Courses,
		enrollments: deps.Enrollments,
		contacts:    deps.Contacts,
		dashboard:   deps.Dashboard,
		export:      deps.Export,
		metrics:     deps.Metrics,
		logger:      logger,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// status is shown in the prompt.
func (a *App) status(ctx context.Context) string {
	session, err := a.auth.RequireSession(ctx)
	if err != nil {
		return "guest"
	}
	return session.User.Email
}

// requireLogin prints the login hint and returns false when there is no session.
func (a *App) requireLogin(ctx context.Context) bool {
	if _, err := a.auth.RequireSession(ctx); err != nil {
		a.report(err)
		return false
	}
	return true
}

// report prints the user-facing part of err and logs the rest.
func (a *App) report(err error) {
	var appErr *appErrors.Error
	if !errors.As(err, &appErr) {
		a.logger.Error("command failed", zap.Error(err))
		a.println("Something went wrong. Please try again.")
		return
	}
	switch appErr.Code {
	case appErrors.ErrNotAuthenticated.Code:
		a.println(MsgLoginRequired)
	case appErrors.ErrTransport.Code, appErrors.ErrInternal.Code:
		a.logger.Warn("command failed", zap.String("code", appErr.Code), zap.Error(err))
		a.println(appErr.Message + ". Please try again.")
	default:
		a.println(appErr.Message)
	}
}
