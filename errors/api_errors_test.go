package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoginError(t *testing.T) {
	t.Run("backend message is kept verbatim", func(t *testing.T) {
		err := NewLoginError(&APIError{StatusCode: 401, Code: "Invalid credentials"})
		assert.Equal(t, "Invalid credentials", err.Error())
		assert.ErrorIs(t, err, ErrLoginFailed)
	})

	t.Run("message field alone is not used for login", func(t *testing.T) {
		err := NewLoginError(&APIError{StatusCode: 500, Detail: "boom"})
		assert.Equal(t, "Login failed", err.Error())
	})

	t.Run("transport failure falls back to generic text", func(t *testing.T) {
		cause := fmt.Errorf("dial tcp: connection refused")
		err := NewLoginError(cause)
		assert.Equal(t, "Login failed", err.Error())
		assert.ErrorIs(t, err, ErrLoginFailed)
		assert.Equal(t, cause, errors.Unwrap(err))
	})
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"nil", nil, "x", ""},
		{"error field", &APIError{StatusCode: 400, Code: "Email already exists"}, "Failed to create doctor", "Email already exists"},
		{"message field", &APIError{StatusCode: 400, Detail: "Validation failed"}, "Registration failed. Please try again.", "Validation failed"},
		{"empty body", &APIError{StatusCode: 500}, "Failed to create visit", "Failed to create visit"},
		{"wrapped", fmt.Errorf("create user: %w", &APIError{StatusCode: 409, Code: "dup"}), "f", "dup"},
		{"other", errors.New("eof"), "Failed to delete patient", "Failed to delete patient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, tt.fallback))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "request failed: 503 Service Unavailable", (&APIError{StatusCode: 503}).Error())
	assert.Equal(t, "nope", (&APIError{StatusCode: 403, Code: "nope"}).Error())
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "Email already exists", ErrorText(&APIError{StatusCode: 400, Code: "Email already exists"}, "Failed to create doctor"))
	assert.Equal(t, "Failed to create doctor", ErrorText(&APIError{StatusCode: 400, Detail: "fullName is required"}, "Failed to create doctor"))
	assert.Equal(t, "Failed to create visit", ErrorText(errors.New("timeout"), "Failed to create visit"))
}
