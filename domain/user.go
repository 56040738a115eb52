package domain

// User is an account record as returned by the backend. The password is
// write-only and never comes back.
type User struct {
	ID             ID     `json:"id" yaml:"id,omitempty"`
	FullName       string `json:"fullName" yaml:"fullName,omitempty"`
	Email          string `json:"email" yaml:"email,omitempty"`
	Role           Role   `json:"role" yaml:"role,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty" yaml:"phoneNumber,omitempty"`
	Gender         string `json:"gender,omitempty" yaml:"gender,omitempty"`
	DateOfBirth    Date   `json:"dateOfBirth" yaml:"dateOfBirth,omitempty"`
	Specialization string `json:"specialization,omitempty" yaml:"specialization,omitempty"` // doctors only
	Address        string `json:"address,omitempty" yaml:"address,omitempty"`
}

// Stats holds the admin dashboard counters.
type Stats struct {
	TotalUsers    int64 `json:"totalUsers" yaml:"totalUsers"`
	TotalDoctors  int64 `json:"totalDoctors" yaml:"totalDoctors"`
	TotalPatients int64 `json:"totalPatients" yaml:"totalPatients"`
	TotalVisits   int64 `json:"totalVisits" yaml:"totalVisits"`
}
