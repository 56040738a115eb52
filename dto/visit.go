package dto

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/internal/validate"
)

// VisitCreateRequest is the body of POST /visits. Unset vitals are sent as null.
type VisitCreateRequest struct {
	PatientID           domain.ID       `json:"patientId" validate:"required"`
	DoctorID            domain.ID       `json:"doctorId" validate:"required"`
	VisitDate           domain.DateTime `json:"visitDate"`
	ReasonForVisit      string          `json:"reasonForVisit"`
	Symptoms            string          `json:"symptoms"`
	Diagnosis           string          `json:"diagnosis"`
	PrescribedMedicines string          `json:"prescribedMedicines"`
	HeightCm            *float64        `json:"heightCm"`
	WeightKg            *float64        `json:"weightKg"`
	BloodPressure       string          `json:"bloodPressure"`
	Pulse               *int            `json:"pulse"`
	Temperature         *float64        `json:"temperature"`
	Notes               string          `json:"notes"`
}

// Validate checks the patient, doctor and date are present.
func (r VisitCreateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.VisitDate.IsZero() {
		return errors.New("visitDate is required")
	}
	return nil
}

// VisitForm holds the raw text inputs of the new-visit form.
type VisitForm struct {
	PatientID           string
	VisitDate           string // YYYY-MM-DDTHH:MM, blank means now
	ReasonForVisit      string
	Symptoms            string
	Diagnosis           string
	PrescribedMedicines string
	HeightCm            string
	WeightKg            string
	BloodPressure       string
	Pulse               string
	Temperature         string
	Notes               string
}

// Build converts the form into a request on behalf of doctorID. Blank
// numeric fields become nil; now supplies the default visit date.
func (f VisitForm) Build(doctorID domain.ID, now time.Time) (VisitCreateRequest, error) {
	req := VisitCreateRequest{
		PatientID:           domain.ID(strings.TrimSpace(f.PatientID)),
		DoctorID:            doctorID,
		ReasonForVisit:      f.ReasonForVisit,
		Symptoms:            f.Symptoms,
		Diagnosis:           f.Diagnosis,
		PrescribedMedicines: f.PrescribedMedicines,
		BloodPressure:       strings.TrimSpace(f.BloodPressure),
		Notes:               f.Notes,
	}

	if strings.TrimSpace(f.VisitDate) == "" {
		req.VisitDate = domain.DateTime{Time: now.Truncate(time.Minute)}
	} else {
		dt, err := domain.ParseDateTime(f.VisitDate)
		if err != nil {
			return VisitCreateRequest{}, fmt.Errorf("visitDate must be formatted as YYYY-MM-DDTHH:MM: %w", err)
		}
		req.VisitDate = dt
	}

	var err error
	if req.HeightCm, err = optionalFloat("heightCm", f.HeightCm); err != nil {
		return VisitCreateRequest{}, err
	}
	if req.WeightKg, err = optionalFloat("weightKg", f.WeightKg); err != nil {
		return VisitCreateRequest{}, err
	}
	if req.Temperature, err = optionalFloat("temperature", f.Temperature); err != nil {
		return VisitCreateRequest{}, err
	}
	if s := strings.TrimSpace(f.Pulse); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil {
			return VisitCreateRequest{}, fmt.Errorf("pulse must be a whole number: %q", s)
		}
		req.Pulse = &p
	}

	if err := req.Validate(); err != nil {
		return VisitCreateRequest{}, err
	}
	return req, nil
}

func optionalFloat(field, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number: %q", field, s)
	}
	return &v, nil
}
