package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type form struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=ADMIN DOCTOR PATIENT"`
	Note  string
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(form{Email: "a@b.com", Role: "DOCTOR"}))

	err := Struct(form{Email: "nope", Role: "NURSE"})
	assert.EqualError(t, err, "email must be a valid email address; role must be one of ADMIN DOCTOR PATIENT")

	err = Struct(form{})
	assert.EqualError(t, err, "email is required; role is required")
}
