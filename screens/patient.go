package screens

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"go.pilab.hu/clinic/domain"
	serrors "go.pilab.hu/clinic/errors"
	"go.pilab.hu/clinic/session"
)

// PatientDashboard shows the logged-in patient's profile and visits.
func (s *Screens) PatientDashboard(ctx context.Context, current *session.Session) error {
	if current == nil {
		return serrors.ErrNotAuthenticated
	}

	var (
		visits  []domain.Visit
		profile *domain.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		visits, err = s.api.PatientVisits(gctx, current.ID)
		return err
	})
	g.Go(func() (err error) {
		profile, err = s.api.GetUser(gctx, current.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn(ctx, "error fetching patient data", map[string]interface{}{"patient_id": current.ID.String(), "error": err.Error()})
	}

	if s.format == FormatYAML {
		return s.yaml(map[string]interface{}{"profile": profile, "visits": visits})
	}

	s.println("Patient Dashboard")
	s.printf("Welcome, %s\n\n", current.FullName)

	if profile != nil {
		s.println("Profile Information")
		s.printf("Email: %s\n", profile.Email)
		s.printf("Phone: %s\n", orNA(profile.PhoneNumber))
		s.printf("Gender: %s\n", orNA(profile.Gender))
		s.printf("Date of Birth: %s\n", orNA(profile.DateOfBirth.String()))
		s.printf("Address: %s\n", orNA(profile.Address))
		s.println()
	}

	s.println("My Visits")
	if len(visits) == 0 {
		s.println("No visits found.")
		return nil
	}
	t := s.table("ID", "Date", "Doctor", "Reason", "Diagnosis")
	for _, v := range visits {
		t.row(v.ID.String(), v.VisitDate.Format(domain.DateLayout), v.DoctorName, orNA(v.ReasonForVisit), orNA(v.Diagnosis))
	}
	return t.flush()
}

func floatOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intOrNA(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}
