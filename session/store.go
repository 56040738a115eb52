package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	serrors "go.pilab.hu/clinic/errors"
	"go.pilab.hu/clinic/internal/audit"
	"go.pilab.hu/clinic/internal/metrics"
	"go.pilab.hu/clinic/log"
)

// State is the lifecycle state of a Store.
type State int

const (
	StateInitializing State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Authenticator performs the remote login call and returns the raw session
// object from the response body.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (json.RawMessage, error)
}

// Reader is the read-only view of a Store handed to consumers such as the
// route guard.
type Reader interface {
	Current() (*Session, bool)
	IsInitializing() bool
}

// Store owns the active Session. It is the only writer of the storage slot.
type Store struct {
	auth    Authenticator
	storage Storage
	logger  log.Logger
	metrics *metrics.Metrics
	audit   *audit.Logger

	initOnce sync.Once
	ready    chan struct{}

	// writeMu orders storage writes together with the in-memory update, so
	// the stored slot always holds the active session.
	writeMu sync.Mutex

	mu           sync.RWMutex
	initializing bool
	current      *Session
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics records login and logout counts into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithAudit records logins and logouts into a.
func WithAudit(a *audit.Logger) Option {
	return func(s *Store) { s.audit = a }
}

// NewStore returns a Store in the initializing state. Call Initialize before
// making access decisions.
func NewStore(auth Authenticator, storage Storage, opts ...Option) *Store {
	s := &Store{
		auth:         auth,
		storage:      storage,
		logger:       log.Nop(),
		ready:        make(chan struct{}),
		initializing: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(map[string]interface{}{"component": "session"})
	return s
}

// Initialize restores the persisted session, if any. Only the first call has
// an effect. Unreadable or corrupt storage is logged and treated as no session.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		restored := s.restore(ctx)

		s.mu.Lock()
		// A login that completed while initializing wins over the stored copy.
		if s.current == nil {
			s.current = restored
		}
		s.initializing = false
		s.mu.Unlock()

		close(s.ready)
	})
}

func (s *Store) restore(ctx context.Context) *Session {
	data, found, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Warn(ctx, "stored session unreadable, starting unauthenticated",
			map[string]interface{}{"error": fmt.Errorf("%w: %v", serrors.ErrStorageRead, err).Error()})
		return nil
	}
	if !found {
		return nil
	}
	sess, err := Decode(data)
	if err != nil {
		s.logger.Warn(ctx, "stored session corrupt, starting unauthenticated",
			map[string]interface{}{"error": fmt.Errorf("%w: %v", serrors.ErrStorageRead, err).Error()})
		return nil
	}
	s.logger.Debug(ctx, "session restored", map[string]interface{}{"user_id": sess.ID.String(), "role": sess.Role.String()})
	return sess
}

// Ready is closed once Initialize has completed.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// IsInitializing reports whether Initialize has not completed yet.
func (s *Store) IsInitializing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initializing
}

// State returns the lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.initializing:
		return StateInitializing
	case s.current != nil:
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// Current returns a copy of the active session.
func (s *Store) Current() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return s.current.Clone(), true
}

// Login authenticates against the backend, persists the returned session and
// makes it active. On any failure the active session is left unchanged and
// the error matches serrors.ErrLoginFailed; its text is the backend's error
// message when one was given. Concurrent logins are not serialized: the last
// one to complete wins.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	raw, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, s.loginFailed(ctx, email, serrors.NewLoginError(err))
	}

	sess, err := Decode(raw)
	if err != nil {
		return nil, s.loginFailed(ctx, email, serrors.NewLoginError(err))
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, s.loginFailed(ctx, email, serrors.NewLoginError(err))
	}
	s.writeMu.Lock()
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		s.writeMu.Unlock()
		return nil, s.loginFailed(ctx, email, serrors.NewLoginError(fmt.Errorf("%w: %v", serrors.ErrStorageWrite, err)))
	}
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.metrics.ObserveLogin(true)
	s.audit.Log(ctx, audit.ActionLogin, email, sess.ID.String(), nil)
	s.logger.Info(ctx, "logged in", map[string]interface{}{"user_id": sess.ID.String(), "role": sess.Role.String()})
	return sess.Clone(), nil
}

func (s *Store) loginFailed(ctx context.Context, email string, err *serrors.LoginError) error {
	s.metrics.ObserveLogin(false)
	s.audit.Log(ctx, audit.ActionLogin, email, "", err)
	s.logger.Warn(ctx, "login failed", map[string]interface{}{"error": err.Error(), "cause": fmt.Sprint(err.Cause)})
	return err
}

// Logout clears the active session and its stored copy. It never fails;
// storage errors are logged.
func (s *Store) Logout(ctx context.Context) {
	s.writeMu.Lock()
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()
	err := s.storage.Delete(ctx, StorageKey)
	s.writeMu.Unlock()

	if err != nil {
		s.logger.Error(ctx, "failed to remove stored session", err)
	}
	if prev != nil {
		s.audit.Log(ctx, audit.ActionLogout, prev.ID.String(), "", nil)
	}
	s.metrics.ObserveLogout()
	s.logger.Info(ctx, "logged out")
}
