package screens

import (
	"context"
	"errors"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/dto"
	serrors "go.pilab.hu/clinic/errors"
	"go.pilab.hu/clinic/internal/audit"
	"go.pilab.hu/clinic/session"
)

// ErrPatientNotSelected is returned when the new-visit form names a patient
// that is not in the patient list.
var ErrPatientNotSelected = errors.New("Please select a patient") //nolint:staticcheck

// DoctorDashboard lists the logged-in doctor's visits.
func (s *Screens) DoctorDashboard(ctx context.Context, current *session.Session) error {
	if current == nil {
		return serrors.ErrNotAuthenticated
	}
	visits, err := s.api.DoctorVisits(ctx, current.ID)
	if err != nil {
		// The dashboard still renders, with no visits.
		s.logger.Warn(ctx, "error fetching visits", map[string]interface{}{"doctor_id": current.ID.String(), "error": err.Error()})
	}
	if s.format == FormatYAML {
		return s.yaml(visits)
	}

	s.println("Doctor Dashboard")
	s.printf("Welcome, Dr. %s\n\n", current.FullName)
	s.println("My Visits")
	if len(visits) == 0 {
		s.println("No visits found. Create your first visit!")
		return nil
	}
	t := s.table("ID", "Date", "Patient", "Reason", "Diagnosis")
	for _, v := range visits {
		t.row(v.ID.String(), v.VisitDate.Format(domain.DateLayout), v.PatientName, orNA(v.ReasonForVisit), orNA(v.Diagnosis))
	}
	return t.flush()
}

// Patients lists the choices of the new-visit patient selector.
func (s *Screens) Patients(ctx context.Context) error {
	patients, err := s.api.ListUsers(ctx, domain.RolePatient)
	if err != nil {
		return fail(err, "Failed to load patients")
	}
	if s.format == FormatYAML {
		return s.yaml(patients)
	}
	t := s.table("ID", "Patient")
	for _, p := range patients {
		t.row(p.ID.String(), p.FullName+" ("+p.Email+")")
	}
	return t.flush()
}

// NewVisit records a visit on behalf of the logged-in doctor. The patient
// must be one returned by the patient list; a blank visit date means now.
func (s *Screens) NewVisit(ctx context.Context, current *session.Session, form dto.VisitForm) (*domain.Visit, error) {
	if current == nil {
		return nil, serrors.ErrNotAuthenticated
	}

	req, err := form.Build(current.ID, s.now())
	if err != nil {
		return nil, &Failure{Message: err.Error(), Err: err}
	}

	patients, err := s.api.ListUsers(ctx, domain.RolePatient)
	if err != nil {
		return nil, &Failure{Message: serrors.ErrorText(err, "Failed to create visit"), Err: err}
	}
	if !containsUser(patients, req.PatientID) {
		return nil, &Failure{Message: ErrPatientNotSelected.Error(), Err: ErrPatientNotSelected}
	}

	visit, err := s.api.CreateVisit(ctx, req)
	if err != nil {
		s.record(ctx, audit.ActionVisitCreate, req.PatientID.String(), err)
		s.logger.Warn(ctx, "create visit failed", map[string]interface{}{"patient_id": req.PatientID.String(), "error": err.Error()})
		return nil, &Failure{Message: serrors.ErrorText(err, "Failed to create visit"), Err: err}
	}
	s.record(ctx, audit.ActionVisitCreate, visit.ID.String(), nil)
	s.println("Visit created successfully!")
	s.Redirect("/doctor")
	return visit, nil
}

// VisitDetails prints every field of one visit.
func (s *Screens) VisitDetails(ctx context.Context, id domain.ID) error {
	v, err := s.api.GetVisit(ctx, id)
	if err != nil {
		return fail(err, "Failed to load visit")
	}
	if s.format == FormatYAML {
		return s.yaml(v)
	}
	s.println("Visit Details:")
	s.println()
	s.printf("Date: %s\n", v.VisitDate)
	s.printf("Patient: %s\n", v.PatientName)
	s.printf("Doctor: %s\n", v.DoctorName)
	s.printf("Reason: %s\n", orNA(v.ReasonForVisit))
	s.printf("Symptoms: %s\n", orNA(v.Symptoms))
	s.printf("Diagnosis: %s\n", orNA(v.Diagnosis))
	s.printf("Medicines: %s\n", orNA(v.PrescribedMedicines))
	s.printf("Height (cm): %s\n", floatOrNA(v.HeightCm))
	s.printf("Weight (kg): %s\n", floatOrNA(v.WeightKg))
	s.printf("Blood pressure: %s\n", orNA(v.BloodPressure))
	s.printf("Pulse: %s\n", intOrNA(v.Pulse))
	s.printf("Temperature: %s\n", floatOrNA(v.Temperature))
	s.printf("Notes: %s\n", orNA(v.Notes))
	return nil
}

func containsUser(users []domain.User, id domain.ID) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}
