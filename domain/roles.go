package domain

import "fmt"

// Role is the closed set of account roles. A user's role is assigned at
// account creation and never changes on the client.
type Role string

// Standard Roles
const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleDoctor, RolePatient}

// Valid reports whether r is one of the known roles. Comparison is exact,
// "doctor" is not a role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// HomePath is the screen a user of this role lands on after login.
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleDoctor:
		return "/doctor"
	case RolePatient:
		return "/patient"
	}
	return "/login"
}

// ParseRole converts s into a Role, rejecting anything outside the enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q (expected one of ADMIN, DOCTOR, PATIENT)", s)
	}
	return r, nil
}
