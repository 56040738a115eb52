package screens

import (
	"context"
	"fmt"
	"strings"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/dto"
	serrors "go.pilab.hu/clinic/errors"
	"go.pilab.hu/clinic/internal/audit"
)

// label is the capitalized noun the management screens use for role.
func label(role domain.Role) string {
	switch role {
	case domain.RoleDoctor:
		return "Doctor"
	case domain.RolePatient:
		return "Patient"
	case domain.RoleAdmin:
		return "Admin"
	}
	return "User"
}

// ListUsers shows the accounts of role, as on the manage doctors and manage
// patients screens.
func (s *Screens) ListUsers(ctx context.Context, role domain.Role) error {
	users, err := s.api.ListUsers(ctx, role)
	if err != nil {
		return fail(err, fmt.Sprintf("Failed to load %ss", strings.ToLower(label(role))))
	}
	if s.format == FormatYAML {
		return s.yaml(users)
	}

	s.printf("Manage %ss\n\n", label(role))
	if len(users) == 0 {
		s.printf("No %ss found.\n", strings.ToLower(label(role)))
		return nil
	}

	var t *table
	if role == domain.RoleDoctor {
		t = s.table("ID", "Name", "Email", "Specialization", "Phone")
		for _, u := range users {
			t.row(u.ID.String(), u.FullName, u.Email, orNA(u.Specialization), orNA(u.PhoneNumber))
		}
	} else {
		t = s.table("ID", "Name", "Email", "Phone", "Gender", "Date of Birth")
		for _, u := range users {
			t.row(u.ID.String(), u.FullName, u.Email, orNA(u.PhoneNumber), orNA(u.Gender), orNA(u.DateOfBirth.String()))
		}
	}
	return t.flush()
}

// CreateUser creates an account of role from the management form.
func (s *Screens) CreateUser(ctx context.Context, role domain.Role, form dto.UserForm) (*domain.User, error) {
	noun := strings.ToLower(label(role))
	req, err := form.WithRole(role)
	if err != nil {
		return nil, &Failure{Message: err.Error(), Err: err}
	}
	user, err := s.api.CreateUser(ctx, req)
	if err != nil {
		s.record(ctx, audit.ActionUserCreate, req.Email, err)
		s.logger.Warn(ctx, "create user failed", map[string]interface{}{"role": role.String(), "error": err.Error()})
		return nil, &Failure{Message: serrors.ErrorText(err, "Failed to create "+noun), Err: err}
	}
	s.record(ctx, audit.ActionUserCreate, user.ID.String(), nil)
	s.printf("%s created successfully!\n", label(role))
	return user, nil
}

// DeleteUser removes an account of role after confirmation. A declined
// confirmation is not an error and sends nothing.
func (s *Screens) DeleteUser(ctx context.Context, role domain.Role, id domain.ID) (bool, error) {
	noun := strings.ToLower(label(role))
	if !s.confirm(fmt.Sprintf("Are you sure you want to delete this %s?", noun)) {
		return false, nil
	}
	err := s.api.DeleteUser(ctx, id)
	s.record(ctx, audit.ActionUserDelete, id.String(), err)
	if err != nil {
		s.logger.Warn(ctx, "delete user failed", map[string]interface{}{"user_id": id.String(), "error": err.Error()})
		return false, &Failure{Message: "Failed to delete " + noun, Err: err}
	}
	s.printf("%s deleted successfully!\n", label(role))
	return true, nil
}
