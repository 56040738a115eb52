package guard

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pilab.hu/clinic/cache"
	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/internal/metrics"
	"go.pilab.hu/clinic/session"
)

type fakeReader struct {
	initializing bool
	current      *session.Session
}

func (f *fakeReader) Current() (*session.Session, bool) { return f.current, f.current != nil }
func (f *fakeReader) IsInitializing() bool              { return f.initializing }

type staticAuth struct{ body string }

func (a staticAuth) Login(context.Context, string, string) (json.RawMessage, error) {
	return json.RawMessage(a.body), nil
}

func sess(role domain.Role) *session.Session {
	return &session.Session{ID: "7", FullName: "Dr. A", Role: role}
}

func TestDecide(t *testing.T) {
	redirect := Decision{Outcome: Redirect, Location: LoginPath}
	render := Decision{Outcome: Render}

	tests := []struct {
		name     string
		state    session.State
		current  *session.Session
		required domain.Role
		want     Decision
	}{
		{"initializing wins over session", session.StateInitializing, sess(domain.RoleAdmin), domain.RoleAdmin, Decision{Outcome: Loading}},
		{"initializing without role", session.StateInitializing, nil, "", Decision{Outcome: Loading}},
		{"no session", session.StateUnauthenticated, nil, domain.RoleAdmin, redirect},
		{"no session no role", session.StateUnauthenticated, nil, "", redirect},
		{"wrong role", session.StateAuthenticated, sess(domain.RoleDoctor), domain.RoleAdmin, redirect},
		{"admin is not a doctor", session.StateAuthenticated, sess(domain.RoleAdmin), domain.RoleDoctor, redirect},
		{"matching role", session.StateAuthenticated, sess(domain.RolePatient), domain.RolePatient, render},
		{"any role", session.StateAuthenticated, sess(domain.RolePatient), "", render},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.state, tt.current, tt.required))
		})
	}
}

func TestGuard_Check(t *testing.T) {
	r := &fakeReader{initializing: true}
	g := New(r)
	assert.Equal(t, Loading, g.Check(domain.RoleDoctor).Outcome)

	r.initializing = false
	assert.Equal(t, Decision{Outcome: Redirect, Location: LoginPath}, g.Check(""))

	r.current = sess(domain.RoleDoctor)
	assert.Equal(t, Render, g.Check(domain.RoleDoctor).Outcome)
	assert.Equal(t, Redirect, g.Check(domain.RoleAdmin).Outcome)
}

func TestLookup(t *testing.T) {
	r, ok := Lookup("/admin/doctors/")
	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, r.RequiredRole)

	r, ok = Lookup("/")
	require.True(t, ok)
	assert.Equal(t, LoginPath, r.RedirectTo)

	_, ok = Lookup("/nowhere")
	assert.False(t, ok)
}

func TestNavigate(t *testing.T) {
	m := metrics.New()
	r := &fakeReader{current: sess(domain.RoleDoctor)}
	g := New(r, WithMetrics(m))
	ctx := context.Background()

	tests := []struct {
		path string
		want Outcome
	}{
		{"/", Redirect},
		{"/login", Render},
		{"/register", Render},
		{"/doctor", Render},
		{"/doctor/new-visit", Render},
		{"/admin", Redirect},
		{"/patient", Redirect},
	}
	for _, tt := range tests {
		_, d, err := g.Navigate(ctx, tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, d.Outcome, tt.path)
	}

	_, _, err := g.Navigate(ctx, "/settings")
	assert.ErrorIs(t, err, ErrRouteNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("/admin", "redirect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("/doctor", "render")))
}

func TestNavigate_PublicWhileInitializing(t *testing.T) {
	g := New(&fakeReader{initializing: true})
	_, d, err := g.Navigate(context.Background(), "/register")
	require.NoError(t, err)
	assert.Equal(t, Render, d.Outcome)

	_, d, err = g.Navigate(context.Background(), "/admin")
	require.NoError(t, err)
	assert.Equal(t, Loading, d.Outcome)
}

func TestGuard_DoctorLoginScenario(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(staticAuth{body: `{"id":7,"fullName":"Dr. A","role":"DOCTOR"}`}, cache.NewMemoryStorage())
	g := New(store)

	assert.Equal(t, Loading, g.Check(domain.RoleDoctor).Outcome)
	store.Initialize(ctx)
	assert.Equal(t, Redirect, g.Check(domain.RoleDoctor).Outcome)

	_, err := store.Login(ctx, "a@b.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, Render, g.Check(domain.RoleDoctor).Outcome)
	assert.Equal(t, Decision{Outcome: Redirect, Location: LoginPath}, g.Check(domain.RoleAdmin))
	assert.Equal(t, Render, g.Check("").Outcome)

	store.Logout(ctx)
	assert.Equal(t, Redirect, g.Check(domain.RoleDoctor).Outcome)
}
