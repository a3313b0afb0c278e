package cli

import (
	"context"
	"errors"
	"io"
	"strings"
)

const helpText = `Commands:
  signup                          create an account
  login | logout | whoami         manage the session
  dashboard                       welcome, stats, and recent enrollments
  courses                         list the course catalog
  enroll <courseId>               enroll in a course
  enroll-title <title>            enroll in a course by its title
  enrollments | recent [n]        list your enrollments
  stats                           enrollment statistics
  progress <enrollmentId> <n>     set course progress (0-100)
  contact                         send a message
  contacts [query]                list or search messages
  contact-status <id> <status>    set a message status (new, in_progress, resolved)
  contact-stats                   message counts by status
  export <csv|pdf> [file]         export your enrollments
  metrics                         client request counters
  exit | quit                     leave`

// commander is the command surface the REPL dispatches to. App satisfies it;
// tests provide a stub.
type commander interface {
	readCommand(ctx context.Context) (string, error)
	println(args ...any)

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Courses(ctx context.Context) error
	Enroll(ctx context.Context, args []string) error
	EnrollByTitle(ctx context.Context, args []string) error
	Enrollments(ctx context.Context) error
	Recent(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Progress(ctx context.Context, args []string) error
	Contact(ctx context.Context) error
	Contacts(ctx context.Context, args []string) error
	ContactStatus(ctx context.Context, args []string) error
	ContactStats(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Metrics(ctx context.Context) error
}

// Run starts the REPL and returns when the input ends, the user exits, or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	return runREPL(ctx, a)
}

func (a *App) readCommand(ctx context.Context) (string, error) {
	return promptLine(a.reader, a.out, "coursehub ("+a.status(ctx)+")")
}

// runREPL reads one command per line and dispatches it. Command errors have
// already been reported to the user, so the loop keeps going.
func runREPL(ctx context.Context, c commander) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := c.readCommand(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			c.println(helpText)
		case "signup", "register":
			_ = c.Signup(ctx)
		case "login":
			_ = c.Login(ctx)
		case "logout":
			_ = c.Logout(ctx)
		case "whoami":
			_ = c.WhoAmI(ctx)
		case "dashboard":
			_ = c.Dashboard(ctx)
		case "courses":
			_ = c.Courses(ctx)
		case "enroll":
			_ = c.Enroll(ctx, args)
		case "enroll-title":
			_ = c.EnrollByTitle(ctx, args)
		case "enrollments":
			_ = c.Enrollments(ctx)
		case "recent":
			_ = c.Recent(ctx, args)
		case "stats":
			_ = c.Stats(ctx)
		case "progress":
			_ = c.Progress(ctx, args)
		case "contact":
			_ = c.Contact(ctx)
		case "contacts":
			_ = c.Contacts(ctx, args)
		case "contact-status":
			_ = c.ContactStatus(ctx, args)
		case "contact-stats":
			_ = c.ContactStats(ctx)
		case "export":
			_ = c.Export(ctx, args)
		case "metrics":
			_ = c.Metrics(ctx)
		case "exit", "quit":
			c.println("Bye!")
			return nil
		default:
			c.println("Unknown command:", cmd, "(type help)")
		}
	}
}
