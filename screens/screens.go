// Package screens renders the clinic's role dashboards and forms to a
// terminal. Each screen assumes the route guard already allowed it.
package screens

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/dto"
	serrors "go.pilab.hu/clinic/errors"
	"go.pilab.hu/clinic/internal/audit"
	"go.pilab.hu/clinic/log"
	"go.pilab.hu/clinic/session"
)

// API is the part of the backend client the screens call.
type API interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error)
	GetUser(ctx context.Context, id domain.ID) (*domain.User, error)
	CreateUser(ctx context.Context, req dto.UserCreateRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, id domain.ID) error
	DoctorVisits(ctx context.Context, doctorID domain.ID) ([]domain.Visit, error)
	PatientVisits(ctx context.Context, patientID domain.ID) ([]domain.Visit, error)
	GetVisit(ctx context.Context, id domain.ID) (*domain.Visit, error)
	CreateVisit(ctx context.Context, req dto.VisitCreateRequest) (*domain.Visit, error)
}

// Output formats.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// Failure is a screen error carrying the message shown to the user.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }
func (f *Failure) Unwrap() error { return f.Err }

func fail(err error, fallback string) error {
	return &Failure{Message: serrors.UserMessage(err, fallback), Err: err}
}

// Screens renders to one writer.
type Screens struct {
	api     API
	out     io.Writer
	logger  log.Logger
	format  string
	now     func() time.Time
	confirm func(prompt string) bool
	audit   *audit.Logger
	actor   session.Reader
}

// Option configures Screens.
type Option func(*Screens)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Screens) { s.logger = l }
}

// WithFormat selects FormatTable or FormatYAML for lists.
func WithFormat(format string) Option {
	return func(s *Screens) { s.format = format }
}

// WithClock replaces time.Now, used for the default visit date.
func WithClock(now func() time.Time) Option {
	return func(s *Screens) { s.now = now }
}

// WithConfirm sets the yes/no prompt used before deletions. Without one,
// deletions are refused.
func WithConfirm(confirm func(prompt string) bool) Option {
	return func(s *Screens) { s.confirm = confirm }
}

// WithAudit records account and visit changes into a, attributed to the
// session actor holds.
func WithAudit(a *audit.Logger, actor session.Reader) Option {
	return func(s *Screens) {
		s.audit = a
		s.actor = actor
	}
}

// New returns Screens writing to out.
func New(api API, out io.Writer, opts ...Option) *Screens {
	s := &Screens{
		api:     api,
		out:     out,
		logger:  log.Nop(),
		format:  FormatTable,
		now:     time.Now,
		confirm: func(string) bool { return false },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Screens) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Screens) println(args ...interface{}) {
	fmt.Fprintln(s.out, args...)
}

func (s *Screens) yaml(v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output to YAML: %w", err)
	}
	_, err = s.out.Write(out)
	return err
}

// Navbar prints the header, with the greeting when someone is logged in.
func (s *Screens) Navbar(current *session.Session) {
	s.println("Health Records System")
	if current != nil {
		s.printf("Welcome, %s (%s)\n", current.FullName, current.Role)
	}
	s.println()
}

// Loading is shown while the session is still being restored.
func (s *Screens) Loading() {
	s.println("Loading...")
}

// Redirect reports a navigation the guard turned away.
func (s *Screens) Redirect(location string) {
	s.printf("-> %s\n", location)
}

func (s *Screens) record(ctx context.Context, action, target string, err error) {
	var user string
	if s.actor != nil {
		if current, ok := s.actor.Current(); ok {
			user = current.ID.String()
		}
	}
	s.audit.Log(ctx, action, user, target, err)
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
