package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/noah-isme/coursehub-client/internal/models"
	"github.com/noah-isme/coursehub-client/internal/service"
	"github.com/noah-isme/coursehub-client/pkg/validation"
)

const dateLayout = "2006-01-02 15:04"

// Signup prompts for the signup form and registers the account.
func (a *App) Signup(ctx context.Context) error {
	var form validation.SignupForm
	var err error
	if form.Name, err = promptLine(a.reader, a.out, "Name"); err != nil {
		return err
	}
	if form.Email, err = promptLine(a.reader, a.out, "Email"); err != nil {
		return err
	}
	if form.Password, err = promptPassword(a.reader, a.out, "Password"); err != nil {
		return err
	}
	if form.ConfirmPassword, err = promptPassword(a.reader, a.out, "Confirm Password"); err != nil {
		return err
	}

	if _, err := a.auth.Signup(ctx, form); err != nil {
		a.report(err)
		return err
	}
	a.println("Registration successful! Please log in.")
	return nil
}

// Login prompts for credentials and stores the session.
func (a *App) Login(ctx context.Context) error {
	var form validation.LoginForm
	var err error
	if form.Email, err = promptLine(a.reader, a.out, "Email"); err != nil {
		return err
	}
	if form.Password, err = promptPassword(a.reader, a.out, "Password"); err != nil {
		return err
	}

	if _, err := a.auth.Login(ctx, form); err != nil {
		a.report(err)
		return err
	}
	a.println("Login successful!")
	return nil
}

// Logout clears the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		a.report(err)
		return err
	}
	a.println("Logged out.")
	return nil
}

// WhoAmI prints the logged-in identity.
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	a.printf("%s <%s> (id %s)\n", service.WelcomeName(*user), user.Email, user.ID)
	return nil
}

// Dashboard prints the welcome line, stats, and recent enrollments.
func (a *App) Dashboard(ctx context.Context) error {
	summary, err := a.dashboard.Summary(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	a.printf("[%s] Welcome back, %s!\n\n", summary.Initials, summary.WelcomeName)
	a.printStats(summary.Stats)
	a.println()
	a.println("Recent enrollments:")
	a.printEnrollments(summary.Recent)
	return nil
}

// Courses lists the catalog.
func (a *App) Courses(ctx context.Context) error {
	courses := a.courses.List(ctx)
	if len(courses) == 0 {
		a.println("No courses available.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE")
	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Title)
	}
	return tw.Flush()
}

// Enroll enrolls the user in the course with the given id.
func (a *App) Enroll(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: enroll <courseId>")
		return nil
	}
	enrollment, err := a.enrollments.Enroll(ctx, service.EnrollRequest{CourseID: models.NewID(args[0])})
	return a.enrolled(enrollment, err)
}

// EnrollByTitle enrolls the user in the course with the given title.
func (a *App) EnrollByTitle(ctx context.Context, args []string) error {
	title := strings.Join(args, " ")
	if title == "" {
		a.println("Usage: enroll-title <course title>")
		return nil
	}
	enrollment, err := a.enrollments.EnrollByTitle(ctx, title)
	return a.enrolled(enrollment, err)
}

func (a *App) enrolled(enrollment *models.Enrollment, err error) error {
	if err != nil {
		a.report(err)
		return err
	}
	a.printf("Successfully enrolled in %q! Check your dashboard to start learning.\n", enrollment.CourseTitle)
	return nil
}

// Enrollments lists every enrollment of the user.
func (a *App) Enrollments(ctx context.Context) error {
	if !a.requireLogin(ctx) {
		return nil
	}
	a.printEnrollments(a.enrollments.ListEnrollments(ctx, models.ID{}))
	return nil
}

// Recent lists the newest enrollments.
func (a *App) Recent(ctx context.Context, args []string) error {
	if !a.requireLogin(ctx) {
		return nil
	}
	limit := -1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			a.println("Usage: recent [n]")
			return nil
		}
		limit = n
	}
	a.printEnrollments(a.enrollments.RecentEnrollments(ctx, limit))
	return nil
}

// Stats prints the enrollment statistics.
func (a *App) Stats(ctx context.Context) error {
	if !a.requireLogin(ctx) {
		return nil
	}
	a.printStats(a.enrollments.Stats(ctx))
	return nil
}

// Progress updates the progress of one enrollment.
func (a *App) Progress(ctx context.Context, args []string) error {
	if !a.requireLogin(ctx) {
		return nil
	}
	if len(args) != 2 {
		a.println("Usage: progress <enrollmentId> <0-100>")
		return nil
	}
	progress, err := strconv.Atoi(args[1])
	if err != nil {
		a.println("Progress must be a number.")
		return nil
	}
	if !a.enrollments.UpdateProgress(ctx, models.NewID(args[0]), progress) {
		a.println("Failed to update progress. Please try again.")
		return nil
	}
	a.printf("Progress set to %d%%.\n", models.ClampProgress(progress))
	return nil
}

// Contact prompts for and submits a contact message.
func (a *App) Contact(ctx context.Context) error {
	var req service.ContactRequest
	var err error
	if req.Name, err = promptLine(a.reader, a.out, "Name"); err != nil {
		return err
	}
	if req.Email, err = promptLine(a.reader, a.out, "Email"); err != nil {
		return err
	}
	if req.Subject, err = promptLine(a.reader, a.out, "Subject"); err != nil {
		return err
	}
	if req.Message, err = promptMultiline(a.reader, a.out, "Message"); err != nil {
		return err
	}

	if _, err := a.contacts.Submit(ctx, req); err != nil {
		a.report(err)
		return err
	}
	a.println("Thank you! Your message has been sent.")
	return nil
}

// Contacts lists messages, filtered by an optional query.
func (a *App) Contacts(ctx context.Context, args []string) error {
	contacts := a.contacts.Search(ctx, strings.Join(args, " "))
	if len(contacts) == 0 {
		a.println("No messages.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSUBJECT\tSTATUS\tSUBMITTED")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Subject, c.Status, formatTime(c.SubmittedAt))
	}
	return tw.Flush()
}

// ContactStatus moves a message to a new status.
func (a *App) ContactStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		a.println("Usage: contact-status <id> <new|in_progress|resolved>")
		return nil
	}
	if err := a.contacts.UpdateStatus(ctx, models.NewID(args[0]), models.ContactStatus(args[1])); err != nil {
		a.report(err)
		return err
	}
	a.println("Status updated.")
	return nil
}

// ContactStats prints message counts by status.
func (a *App) ContactStats(ctx context.Context) error {
	stats := a.contacts.Stats(ctx)
	a.printf("Total: %d  New: %d  In progress: %d  Resolved: %d\n", stats.Total, stats.New, stats.InProgress, stats.Resolved)
	return nil
}

// Export writes the enrollments to a CSV or PDF file.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: export <csv|pdf> [file]")
		return nil
	}
	format, err := service.ParseExportFormat(args[0])
	if err != nil {
		a.report(err)
		return err
	}
	filename := ""
	if len(args) > 1 {
		filename = args[1]
	}
	result, err := a.export.ExportEnrollments(ctx, format, filename)
	if err != nil {
		a.report(err)
		return err
	}
	a.printf("Exported %d enrollments to %s\n", result.Rows, result.Path)
	return nil
}

// Metrics prints the client's request and enrollment counters.
func (a *App) Metrics(ctx context.Context) error {
	m := a.metrics.Snapshot()
	a.printf("Requests: %d (failed %d, avg %.1f ms)\n", m.RequestsTotal, m.RequestFailures, m.AverageRequestDurationMs)
	a.printf("Enrollments created: %d, conflicts: %d\n", m.EnrollmentsCreated, m.EnrollmentConflicts)
	return nil
}

func (a *App) printStats(stats models.EnrollmentStats) {
	a.printf("Total courses: %d\nCompleted: %d\nIn progress: %d\nNot started: %d\nAverage progress: %.0f%%\n",
		stats.Total, stats.Completed, stats.InProgress, stats.NotStarted, stats.AverageProgress)
}

func (a *App) printEnrollments(enrollments []models.Enrollment) {
	if len(enrollments) == 0 {
		a.println("No enrollments yet.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOURSE\tPROGRESS\tSTATUS\tENROLLED")
	for _, e := range enrollments {
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%s\t%s\n", e.ID, e.CourseTitle, e.Progress, e.Status, formatTime(e.EnrolledAt))
	}
	_ = tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}
