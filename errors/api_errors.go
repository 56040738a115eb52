package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors of the client core.
var (
	// ErrLoginFailed is matched by every login failure, whatever the cause.
	ErrLoginFailed = errors.New("Login failed") //nolint:staticcheck // user-facing message
	// ErrStorageRead marks a persisted session that could not be read or decoded.
	ErrStorageRead = errors.New("session storage read failed")
	// ErrStorageWrite marks a failure to persist the session slot.
	ErrStorageWrite = errors.New("session storage write failed")
	// ErrNotAuthenticated is returned by screens that need a session when there is none.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// APIError is a non-2xx response of the backend. Message holds the body's
// "error" field, or "message" when "error" is absent.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error,omitempty"`
	Detail     string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if msg := e.Message(""); msg != "" {
		return msg
	}
	return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Message returns the backend supplied text, or fallback when the body had none.
func (e *APIError) Message(fallback string) string {
	if e.Code != "" {
		return e.Code
	}
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// LoginError is the error returned by a failed login. Its text is shown to
// the user as-is.
type LoginError struct {
	Message string
	Cause   error
}

// NewLoginError builds a LoginError from the backend failure cause. A backend
// "error" field becomes the message; anything else yields "Login failed".
func NewLoginError(cause error) *LoginError {
	msg := ErrLoginFailed.Error()
	var apiErr *APIError
	if errors.As(cause, &apiErr) && apiErr.Code != "" {
		msg = apiErr.Code
	}
	return &LoginError{Message: msg, Cause: cause}
}

func (e *LoginError) Error() string { return e.Message }

// Unwrap returns the underlying transport or API error.
func (e *LoginError) Unwrap() error { return e.Cause }

// Is makes every LoginError match ErrLoginFailed.
func (e *LoginError) Is(target error) bool { return target == ErrLoginFailed }

// UserMessage extracts a displayable message from err: the backend's error
// text for API errors, fallback for everything else.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	var loginErr *LoginError
	if errors.As(err, &loginErr) {
		return loginErr.Message
	}
	return fallback
}

// ErrorText is UserMessage restricted to the backend's "error" field.
func ErrorText(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		return apiErr.Code
	}
	return fallback
}
