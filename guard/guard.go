// Package guard decides whether a requested screen may render for the
// current session.
package guard

import (
	"context"
	"errors"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/internal/metrics"
	"go.pilab.hu/clinic/log"
	"go.pilab.hu/clinic/session"
)

// LoginPath is where unauthenticated and wrong-role navigation ends up.
const LoginPath = "/login"

// Outcome is what the caller should do with the requested screen.
type Outcome int

const (
	// Loading means the session is not known yet; show a placeholder and decide later.
	Loading Outcome = iota
	// Redirect means navigate to Decision.Location instead.
	Redirect
	// Render means show the requested screen.
	Render
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	}
	return "unknown"
}

// Decision is the result of a guard check.
type Decision struct {
	Outcome  Outcome
	Location string // set for Redirect
}

// ErrRouteNotFound is returned by Navigate for paths outside the route table.
var ErrRouteNotFound = errors.New("no such route")

// Decide is the access rule. A required role must match the session's role
// exactly; a wrong role is treated the same as no session.
func Decide(state session.State, current *session.Session, required domain.Role) Decision {
	if state == session.StateInitializing {
		return Decision{Outcome: Loading}
	}
	if current == nil {
		return Decision{Outcome: Redirect, Location: LoginPath}
	}
	if required != "" && current.Role != required {
		return Decision{Outcome: Redirect, Location: LoginPath}
	}
	return Decision{Outcome: Render}
}

// Guard applies Decide to a session store.
type Guard struct {
	sessions session.Reader
	logger   log.Logger
	metrics  *metrics.Metrics
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

// WithMetrics records decisions into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) { g.metrics = m }
}

// New returns a Guard reading from sessions.
func New(sessions session.Reader, opts ...Option) *Guard {
	g := &Guard{sessions: sessions, logger: log.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check decides access to a screen requiring role (empty for any session).
func (g *Guard) Check(required domain.Role) Decision {
	if g.sessions.IsInitializing() {
		return Decide(session.StateInitializing, nil, required)
	}
	current, ok := g.sessions.Current()
	if !ok {
		return Decide(session.StateUnauthenticated, nil, required)
	}
	return Decide(session.StateAuthenticated, current, required)
}

// Navigate resolves path through the route table and checks access.
// Public routes always render and static redirects are followed.
func (g *Guard) Navigate(ctx context.Context, path string) (Route, Decision, error) {
	route, ok := Lookup(path)
	if !ok {
		return Route{}, Decision{}, ErrRouteNotFound
	}

	var d Decision
	switch {
	case route.RedirectTo != "":
		d = Decision{Outcome: Redirect, Location: route.RedirectTo}
	case route.Public:
		d = Decision{Outcome: Render}
	default:
		d = g.Check(route.RequiredRole)
	}

	g.metrics.ObserveGuard(route.Path, d.Outcome.String())
	g.logger.Debug(ctx, "route guard decision", map[string]interface{}{
		"path":     route.Path,
		"required": route.RequiredRole.String(),
		"outcome":  d.Outcome.String(),
		"location": d.Location,
	})
	return route, d, nil
}
