// Package fakebackend is an in-memory stand-in for the clinic REST backend,
// used by tests across the module.
package fakebackend

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/dto"
)

type account struct {
	domain.User
	password string
}

// Backend holds users and visits and serves them under /api.
type Backend struct {
	mu      sync.Mutex
	nextID  int64
	users   map[domain.ID]*account
	visits  map[domain.ID]*domain.Visit
	failing map[string]int // route -> status to return

	// LoginCalls counts POST /auth/login requests.
	LoginCalls atomic.Int64
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{
		users:   make(map[domain.ID]*account),
		visits:  make(map[domain.ID]*domain.Visit),
		failing: make(map[string]int),
	}
}

// Start serves the backend on an httptest server closed at test cleanup and
// returns the API root URL.
func (b *Backend) Start(t testing.TB) string {
	t.Helper()
	e := echo.New()
	e.HideBanner = true
	b.RegisterRoutes(e.Group("/api"))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

// RegisterRoutes registers the backend routes on g.
func (b *Backend) RegisterRoutes(g *echo.Group) {
	g.Use(b.failures)
	g.POST("/auth/login", b.login)
	g.GET("/admin/stats", b.stats)
	g.GET("/users", b.listUsers)
	g.POST("/users", b.createUser)
	g.GET("/users/:id", b.getUser)
	g.PUT("/users/:id", b.updateUser)
	g.DELETE("/users/:id", b.deleteUser)
	g.GET("/visits/doctor/:id", b.doctorVisits)
	g.GET("/visits/patient/:id", b.patientVisits)
	g.POST("/visits", b.createVisit)
	g.GET("/visits/:id", b.getVisit)
	g.DELETE("/visits/:id", b.deleteVisit)
}

// FailRoute makes every request matching the echo route path (e.g.
// "/api/admin/stats") answer status with an empty body.
func (b *Backend) FailRoute(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing[route] = status
}

func (b *Backend) failures(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.Lock()
		status, ok := b.failing[c.Path()]
		b.mu.Unlock()
		if ok {
			return c.NoContent(status)
		}
		return next(c)
	}
}

// AddUser seeds an account and returns it with its assigned ID.
func (b *Backend) AddUser(u domain.User, password string) domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	u.ID = domain.ID(strconv.FormatInt(b.nextID, 10))
	b.users[u.ID] = &account{User: u, password: password}
	return u
}

// AddVisit seeds a visit and returns it with its assigned ID.
func (b *Backend) AddVisit(v domain.Visit) domain.Visit {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	v.ID = domain.ID(strconv.FormatInt(b.nextID, 10))
	b.visits[v.ID] = &v
	return v
}

// User returns a stored user.
func (b *Backend) User(id domain.ID) (domain.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.users[id]
	if !ok {
		return domain.User{}, false
	}
	return a.User, true
}

// Visits returns all stored visits ordered by ID.
func (b *Backend) Visits() []domain.Visit {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Visit, 0, len(b.visits))
	for _, v := range b.visits {
		out = append(out, *v)
	}
	sortVisits(out)
	return out
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

func (b *Backend) login(c echo.Context) error {
	b.LoginCalls.Add(1)
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Malformed request")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.users {
		if a.Email == req.Email && a.password == req.Password {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"id":       a.ID,
				"fullName": a.FullName,
				"email":    a.Email,
				"role":     a.Role,
			})
		}
	}
	return errorJSON(c, http.StatusUnauthorized, "Invalid credentials")
}

func (b *Backend) stats(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := domain.Stats{TotalUsers: int64(len(b.users)), TotalVisits: int64(len(b.visits))}
	for _, a := range b.users {
		switch a.Role {
		case domain.RoleDoctor:
			s.TotalDoctors++
		case domain.RolePatient:
			s.TotalPatients++
		}
	}
	return c.JSON(http.StatusOK, s)
}

func (b *Backend) listUsers(c echo.Context) error {
	role := domain.Role(c.QueryParam("role"))
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.User, 0, len(b.users))
	for _, a := range b.users {
		if role == "" || a.Role == role {
			out = append(out, a.User)
		}
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) createUser(c echo.Context) error {
	var req dto.UserCreateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Malformed request")
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}
	b.mu.Lock()
	for _, a := range b.users {
		if a.Email == req.Email {
			b.mu.Unlock()
			return errorJSON(c, http.StatusBadRequest, "Email already exists")
		}
	}
	b.mu.Unlock()
	u := b.AddUser(userFromRequest(req), req.Password)
	return c.JSON(http.StatusCreated, u)
}

func (b *Backend) getUser(c echo.Context) error {
	u, ok := b.User(domain.ID(c.Param("id")))
	if !ok {
		return errorJSON(c, http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (b *Backend) updateUser(c echo.Context) error {
	id := domain.ID(c.Param("id"))
	var req dto.UserCreateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Malformed request")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.users[id]
	if !ok {
		return errorJSON(c, http.StatusNotFound, "User not found")
	}
	u := userFromRequest(req)
	u.ID = id
	a.User, a.password = u, req.Password
	return c.JSON(http.StatusOK, u)
}

func (b *Backend) deleteUser(c echo.Context) error {
	id := domain.ID(c.Param("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[id]; !ok {
		return errorJSON(c, http.StatusNotFound, "User not found")
	}
	delete(b.users, id)
	return c.NoContent(http.StatusNoContent)
}

func (b *Backend) visitsBy(match func(*domain.Visit) bool) []domain.Visit {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Visit, 0)
	for _, v := range b.visits {
		if match(v) {
			out = append(out, *v)
		}
	}
	sortVisits(out)
	return out
}

func (b *Backend) doctorVisits(c echo.Context) error {
	id := domain.ID(c.Param("id"))
	return c.JSON(http.StatusOK, b.visitsBy(func(v *domain.Visit) bool { return v.DoctorID == id }))
}

func (b *Backend) patientVisits(c echo.Context) error {
	id := domain.ID(c.Param("id"))
	return c.JSON(http.StatusOK, b.visitsBy(func(v *domain.Visit) bool { return v.PatientID == id }))
}

func (b *Backend) createVisit(c echo.Context) error {
	var req dto.VisitCreateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Malformed request")
	}
	patient, ok := b.User(req.PatientID)
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Patient not found")
	}
	doctor, ok := b.User(req.DoctorID)
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Doctor not found")
	}
	v := b.AddVisit(domain.Visit{
		PatientID:           req.PatientID,
		PatientName:         patient.FullName,
		DoctorID:            req.DoctorID,
		DoctorName:          doctor.FullName,
		VisitDate:           req.VisitDate,
		ReasonForVisit:      req.ReasonForVisit,
		Symptoms:            req.Symptoms,
		Diagnosis:           req.Diagnosis,
		PrescribedMedicines: req.PrescribedMedicines,
		HeightCm:            req.HeightCm,
		WeightKg:            req.WeightKg,
		BloodPressure:       req.BloodPressure,
		Pulse:               req.Pulse,
		Temperature:         req.Temperature,
		Notes:               req.Notes,
	})
	return c.JSON(http.StatusCreated, v)
}

func (b *Backend) getVisit(c echo.Context) error {
	id := domain.ID(c.Param("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.visits[id]
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Visit not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (b *Backend) deleteVisit(c echo.Context) error {
	id := domain.ID(c.Param("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.visits[id]; !ok {
		return errorJSON(c, http.StatusNotFound, "Visit not found")
	}
	delete(b.visits, id)
	return c.NoContent(http.StatusNoContent)
}

func userFromRequest(req dto.UserCreateRequest) domain.User {
	return domain.User{
		FullName:       req.FullName,
		Email:          req.Email,
		Role:           req.Role,
		PhoneNumber:    req.PhoneNumber,
		Gender:         req.Gender,
		DateOfBirth:    req.DateOfBirth,
		Specialization: req.Specialization,
		Address:        req.Address,
	}
}

func sortVisits(v []domain.Visit) {
	sort.Slice(v, func(i, j int) bool { return idLess(v[i].ID, v[j].ID) })
}

func idLess(a, b domain.ID) bool {
	ai, _ := strconv.Atoi(string(a))
	bi, _ := strconv.Atoi(string(b))
	return ai < bi
}
