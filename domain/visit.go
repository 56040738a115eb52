package domain

// Visit is a recorded clinical encounter between a doctor and a patient.
type Visit struct {
	ID                  ID       `json:"id" yaml:"id,omitempty"`
	PatientID           ID       `json:"patientId" yaml:"patientId,omitempty"`
	PatientName         string   `json:"patientName,omitempty" yaml:"patientName,omitempty"`
	DoctorID            ID       `json:"doctorId" yaml:"doctorId,omitempty"`
	DoctorName          string   `json:"doctorName,omitempty" yaml:"doctorName,omitempty"`
	VisitDate           DateTime `json:"visitDate" yaml:"visitDate,omitempty"`
	ReasonForVisit      string   `json:"reasonForVisit,omitempty" yaml:"reasonForVisit,omitempty"`
	Symptoms            string   `json:"symptoms,omitempty" yaml:"symptoms,omitempty"`
	Diagnosis           string   `json:"diagnosis,omitempty" yaml:"diagnosis,omitempty"`
	PrescribedMedicines string   `json:"prescribedMedicines,omitempty" yaml:"prescribedMedicines,omitempty"`
	HeightCm            *float64 `json:"heightCm" yaml:"heightCm,omitempty"`
	WeightKg            *float64 `json:"weightKg" yaml:"weightKg,omitempty"`
	BloodPressure       string   `json:"bloodPressure,omitempty" yaml:"bloodPressure,omitempty"`
	Pulse               *int     `json:"pulse" yaml:"pulse,omitempty"`
	Temperature         *float64 `json:"temperature" yaml:"temperature,omitempty"`
	Notes               string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}
