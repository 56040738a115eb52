package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/dto"
	serrors "go.pilab.hu/clinic/errors"
	"go.pilab.hu/clinic/internal/fakebackend"
	"go.pilab.hu/clinic/internal/metrics"
)

func newTestClient(t *testing.T) (*Client, *fakebackend.Backend, *metrics.Metrics) {
	t.Helper()
	backend := fakebackend.New()
	m := metrics.New()
	c, err := New(backend.Start(t), WithMetrics(m))
	require.NoError(t, err)
	return c, backend, m
}

func TestNew_InvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "   ", "ftp://host/api", "://bad"} {
		_, err := New(endpoint)
		assert.Error(t, err, endpoint)
	}
}

func TestLogin(t *testing.T) {
	c, backend, m := newTestClient(t)
	backend.AddUser(domain.User{FullName: "Dr. A", Email: "a@b.com", Role: domain.RoleDoctor}, "pw")
	ctx := context.Background()

	raw, err := c.Login(ctx, "a@b.com", "pw")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"fullName":"Dr. A","email":"a@b.com","role":"DOCTOR"}`, string(raw))

	_, err = c.Login(ctx, "a@b.com", "wrongpass")
	var apiErr *serrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Error())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("POST", "401")))
}

func TestUsersLifecycle(t *testing.T) {
	c, backend, _ := newTestClient(t)
	ctx := context.Background()
	backend.AddUser(domain.User{FullName: "Admin", Email: "admin@x.com", Role: domain.RoleAdmin}, "pw")

	created, err := c.CreateUser(ctx, dto.UserCreateRequest{
		FullName: "Dr. House", Email: "house@x.com", Password: "vicodin", Role: domain.RoleDoctor,
		Specialization: "Diagnostics",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ID("2"), created.ID)

	doctors, err := c.ListUsers(ctx, domain.RoleDoctor)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Diagnostics", doctors[0].Specialization)

	all, err := c.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = c.CreateUser(ctx, dto.UserCreateRequest{
		FullName: "Dup", Email: "house@x.com", Password: "x", Role: domain.RoleDoctor,
	})
	assert.EqualError(t, err, "Email already exists")

	updated, err := c.UpdateUser(ctx, created.ID, dto.UserCreateRequest{
		FullName: "Dr. G. House", Email: "house@x.com", Password: "vicodin", Role: domain.RoleDoctor,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. G. House", updated.FullName)

	got, err := c.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. G. House", got.FullName)

	require.NoError(t, c.DeleteUser(ctx, created.ID))
	_, err = c.GetUser(ctx, created.ID)
	var apiErr *serrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalUsers: 1}, *stats)
}

func TestVisits(t *testing.T) {
	c, backend, _ := newTestClient(t)
	ctx := context.Background()
	doc := backend.AddUser(domain.User{FullName: "Dr. A", Email: "a@x.com", Role: domain.RoleDoctor}, "pw")
	pat := backend.AddUser(domain.User{FullName: "Pat", Email: "p@x.com", Role: domain.RolePatient}, "pw")

	pulse := 70
	visit, err := c.CreateVisit(ctx, dto.VisitCreateRequest{
		PatientID: pat.ID, DoctorID: doc.ID, Diagnosis: "Flu", Pulse: &pulse,
		VisitDate: mustDateTime(t, "2024-02-03T10:00:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Pat", visit.PatientName)
	assert.Equal(t, "Dr. A", visit.DoctorName)

	byDoctor, err := c.DoctorVisits(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, byDoctor, 1)
	assert.Equal(t, 70, *byDoctor[0].Pulse)

	byPatient, err := c.PatientVisits(ctx, pat.ID)
	require.NoError(t, err)
	assert.Len(t, byPatient, 1)

	one, err := c.GetVisit(ctx, visit.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-03 10:00", one.VisitDate.String())

	require.NoError(t, c.DeleteVisit(ctx, visit.ID))
	none, err := c.PatientVisits(ctx, pat.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRequestHeadersAndEmptyErrorBody(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		assert.Equal(t, "/api/admin/stats", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	require.NoError(t, err)
	_, err = c.Stats(context.Background())

	var apiErr *serrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to load stats", apiErr.Message("Failed to load stats"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/api"
	srv.Close()

	c, err := New(endpoint)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), "a@b.com", "x")
	require.Error(t, err)
	var apiErr *serrors.APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestIDsStayOneSegment(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.GetVisit(ctx, "../users/3")
	var apiErr *serrors.APIError
	require.ErrorAs(t, err, &apiErr)
	_, err = c.DoctorVisits(ctx, "7?x=1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{"/api/visits/..%2Fusers%2F3", "/api/visits/doctor/7%3Fx=1"}, paths)

	for _, id := range []domain.ID{"", ".", ".."} {
		_, err = c.GetVisit(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidID, "%q", id)
		assert.ErrorIs(t, c.DeleteUser(ctx, id), ErrInvalidID, "%q", id)
	}
	assert.Len(t, paths, 2)
}

func mustDateTime(t *testing.T, s string) domain.DateTime {
	t.Helper()
	dt, err := domain.ParseDateTime(s)
	require.NoError(t, err)
	return dt
}
