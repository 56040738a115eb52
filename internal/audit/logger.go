// Package audit records who changed what: logins, logouts and the account
// and visit changes made through the screens.
package audit

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Actions.
const (
	ActionLogin       = "session.login"
	ActionLogout      = "session.logout"
	ActionUserCreate  = "user.create"
	ActionUserDelete  = "user.delete"
	ActionVisitCreate = "visit.create"
)

// Event is one audit record.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	User      string    `json:"user,omitempty"`   // acting user ID or email
	Target    string    `json:"target,omitempty"` // affected resource ID
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Logger writes one JSON line per event. A nil *Logger discards events.
type Logger struct {
	out zerolog.Logger
	now func() time.Time
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{out: zerolog.New(w), now: time.Now}
}

// Log records action by user on target; err marks it failed.
func (l *Logger) Log(_ context.Context, action, user, target string, err error) {
	if l == nil {
		return
	}
	e := Event{
		Timestamp: l.now().UTC(),
		Action:    action,
		User:      user,
		Target:    target,
		Success:   err == nil,
	}
	if err != nil {
		e.Error = err.Error()
	}
	l.out.Log().
		Time("timestamp", e.Timestamp).
		Str("action", e.Action).
		Str("user", e.User).
		Str("target", e.Target).
		Bool("success", e.Success).
		Str("error", e.Error).
		Send()
}
