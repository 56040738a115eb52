package screens

import (
	"context"

	"go.pilab.hu/clinic/dto"
)

// Register submits the self-registration form.
func (s *Screens) Register(ctx context.Context, form dto.UserForm) error {
	req, err := form.Registration()
	if err != nil {
		return &Failure{Message: err.Error(), Err: err}
	}
	if _, err := s.api.CreateUser(ctx, req); err != nil {
		s.logger.Warn(ctx, "registration failed", map[string]interface{}{"email": req.Email, "error": err.Error()})
		return fail(err, "Registration failed. Please try again.")
	}
	s.println("Registration successful! Please login with your credentials.")
	return nil
}
