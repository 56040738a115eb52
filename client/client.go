// Package client is the REST client of the clinic backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/dto"
	serrors "go.pilab.hu/clinic/errors"
	"go.pilab.hu/clinic/internal/metrics"
	"go.pilab.hu/clinic/log"
	"go.pilab.hu/clinic/tracing"
)

const (
	// DefaultTimeout bounds a single request when no http.Client is supplied.
	DefaultTimeout = 15 * time.Second

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 1 << 20
)

// ErrInvalidID is returned for IDs that cannot be used as a path segment.
var ErrInvalidID = errors.New("invalid id")

// Client talks to the backend over JSON REST.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     log.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records request counts into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New returns a Client for the API rooted at endpoint, e.g.
// "http://localhost:8080/api".
func New(endpoint string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("server endpoint is not configured")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid server endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server endpoint %q: scheme must be http or https", endpoint)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     log.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the configured API root.
func (c *Client) Endpoint() string { return c.baseURL.String() }

// escapePath escapes each part as a single path segment. Parts that would be
// removed or merged by path cleaning are rejected.
func escapePath(parts []string) ([]string, error) {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		if p == "" || p == "." || p == ".." {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, p)
		}
		escaped[i] = url.PathEscape(p)
	}
	return escaped, nil
}

// do performs one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded 2xx response. Non-2xx responses become
// *serrors.APIError.
func (c *Client) do(ctx context.Context, method, route string, query url.Values, body, out interface{}, pathParts ...string) error {
	parts, err := escapePath(pathParts)
	if err != nil {
		return err
	}
	u := c.baseURL.JoinPath(parts...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	ctx, span := tracing.Tracer.Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("http.route", route),
		))
	defer span.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	fields := map[string]interface{}{"method": method, "route": route, "request_id": requestID}
	c.logger.Debug(ctx, "sending request", fields)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		c.logger.Warn(ctx, "request failed", fields, map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("%s %s: %w", method, route, err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(method, resp.StatusCode)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug(ctx, "received response", fields, map[string]interface{}{"status": resp.StatusCode})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &serrors.APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		// Bodies that are not the {error, message} object leave the message empty.
		_ = json.Unmarshal(raw, apiErr)
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("decode %s %s response: %w", method, route, err)
	}
	return nil
}

// Login posts the credentials and returns the raw session object.
func (c *Client) Login(ctx context.Context, email, password string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodPost, "/auth/login", nil,
		dto.LoginRequest{Email: email, Password: password}, &raw, "auth", "login")
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Stats returns the admin dashboard counters.
func (c *Client) Stats(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, nil, &stats, "admin", "stats"); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListUsers lists accounts, filtered by role when role is set.
func (c *Client) ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var query url.Values
	if role != "" {
		query = url.Values{"role": []string{string(role)}}
	}
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &users, "users"); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one account.
func (c *Client) GetUser(ctx context.Context, id domain.ID) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/{id}", nil, nil, &user, "users", id.String()); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser registers an account.
func (c *Client) CreateUser(ctx context.Context, req dto.UserCreateRequest) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPost, "/users", nil, req, &user, "users"); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser replaces an account's fields.
func (c *Client) UpdateUser(ctx context.Context, id domain.ID, req dto.UserCreateRequest) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPut, "/users/{id}", nil, req, &user, "users", id.String()); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id domain.ID) error {
	return c.do(ctx, http.MethodDelete, "/users/{id}", nil, nil, nil, "users", id.String())
}

// DoctorVisits lists the visits recorded by a doctor.
func (c *Client) DoctorVisits(ctx context.Context, doctorID domain.ID) ([]domain.Visit, error) {
	var visits []domain.Visit
	if err := c.do(ctx, http.MethodGet, "/visits/doctor/{id}", nil, nil, &visits, "visits", "doctor", doctorID.String()); err != nil {
		return nil, err
	}
	return visits, nil
}

// PatientVisits lists the visits of a patient.
func (c *Client) PatientVisits(ctx context.Context, patientID domain.ID) ([]domain.Visit, error) {
	var visits []domain.Visit
	if err := c.do(ctx, http.MethodGet, "/visits/patient/{id}", nil, nil, &visits, "visits", "patient", patientID.String()); err != nil {
		return nil, err
	}
	return visits, nil
}

// GetVisit fetches one visit.
func (c *Client) GetVisit(ctx context.Context, id domain.ID) (*domain.Visit, error) {
	var visit domain.Visit
	if err := c.do(ctx, http.MethodGet, "/visits/{id}", nil, nil, &visit, "visits", id.String()); err != nil {
		return nil, err
	}
	return &visit, nil
}

// CreateVisit records a visit.
func (c *Client) CreateVisit(ctx context.Context, req dto.VisitCreateRequest) (*domain.Visit, error) {
	var visit domain.Visit
	if err := c.do(ctx, http.MethodPost, "/visits", nil, req, &visit, "visits"); err != nil {
		return nil, err
	}
	return &visit, nil
}

// DeleteVisit removes a visit.
func (c *Client) DeleteVisit(ctx context.Context, id domain.ID) error {
	return c.do(ctx, http.MethodDelete, "/visits/{id}", nil, nil, nil, "visits", id.String())
}
