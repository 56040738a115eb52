package guard

import (
	"strings"

	"go.pilab.hu/clinic/domain"
)

// Route is one entry of the screen table.
type Route struct {
	Path         string
	Title        string
	Public       bool
	RequiredRole domain.Role
	RedirectTo   string
}

// Routes is the screen table.
var Routes = []Route{
	{Path: "/", RedirectTo: LoginPath},
	{Path: "/login", Title: "Login", Public: true},
	{Path: "/register", Title: "Register", Public: true},
	{Path: "/admin", Title: "Admin Dashboard", RequiredRole: domain.RoleAdmin},
	{Path: "/admin/doctors", Title: "Manage Doctors", RequiredRole: domain.RoleAdmin},
	{Path: "/admin/patients", Title: "Manage Patients", RequiredRole: domain.RoleAdmin},
	{Path: "/doctor", Title: "Doctor Dashboard", RequiredRole: domain.RoleDoctor},
	{Path: "/doctor/new-visit", Title: "Create New Visit", RequiredRole: domain.RoleDoctor},
	{Path: "/patient", Title: "Patient Dashboard", RequiredRole: domain.RolePatient},
}

// Lookup finds the route for path. A trailing slash is ignored.
func Lookup(path string) (Route, bool) {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}
