package dto

import (
	"errors"
	"strings"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/internal/validate"
)

// MinPasswordLength is the shortest password the registration form accepts.
const MinPasswordLength = 6

// UserCreateRequest is the body of POST /users and PUT /users/{id}.
type UserCreateRequest struct {
	FullName       string      `json:"fullName" validate:"required"`
	Email          string      `json:"email" validate:"required,email"`
	Password       string      `json:"password" validate:"required"`
	Role           domain.Role `json:"role" validate:"required,oneof=ADMIN DOCTOR PATIENT"`
	PhoneNumber    string      `json:"phoneNumber,omitempty"`
	Gender         string      `json:"gender,omitempty"`
	DateOfBirth    domain.Date `json:"dateOfBirth"`
	Specialization string      `json:"specialization,omitempty"`
	Address        string      `json:"address,omitempty"`
}

// Validate checks the required fields.
func (r UserCreateRequest) Validate() error {
	return validate.Struct(r)
}

// UserForm holds the raw inputs of the account forms (registration and the
// admin management screens).
type UserForm struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	PhoneNumber     string
	Gender          string
	DateOfBirth     string
	Specialization  string
	Address         string
}

// Registration form errors, shown verbatim.
var (
	ErrPasswordMismatch = errors.New("Passwords do not match")                      //nolint:staticcheck
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters long") //nolint:staticcheck
)

// Registration validates the self-registration form and builds the request.
// The role defaults to PATIENT and specialization is only sent for doctors.
func (f UserForm) Registration() (UserCreateRequest, error) {
	if f.Password != f.ConfirmPassword {
		return UserCreateRequest{}, ErrPasswordMismatch
	}
	if len(f.Password) < MinPasswordLength {
		return UserCreateRequest{}, ErrPasswordTooShort
	}
	role := domain.RolePatient
	if strings.TrimSpace(f.Role) != "" {
		r, err := domain.ParseRole(strings.TrimSpace(f.Role))
		if err != nil {
			return UserCreateRequest{}, err
		}
		role = r
	}
	return f.build(role)
}

// WithRole builds a request for the management screens, which force the role.
func (f UserForm) WithRole(role domain.Role) (UserCreateRequest, error) {
	return f.build(role)
}

func (f UserForm) build(role domain.Role) (UserCreateRequest, error) {
	dob, err := domain.ParseDate(f.DateOfBirth)
	if err != nil {
		return UserCreateRequest{}, errors.New("dateOfBirth must be formatted as YYYY-MM-DD")
	}
	req := UserCreateRequest{
		FullName:    strings.TrimSpace(f.FullName),
		Email:       strings.TrimSpace(f.Email),
		Password:    f.Password,
		Role:        role,
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		Gender:      strings.TrimSpace(f.Gender),
		DateOfBirth: dob,
		Address:     strings.TrimSpace(f.Address),
	}
	if role == domain.RoleDoctor {
		req.Specialization = strings.TrimSpace(f.Specialization)
	}
	if err := req.Validate(); err != nil {
		return UserCreateRequest{}, err
	}
	return req, nil
}
