package screens

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"go.pilab.hu/clinic/domain"
)

// dashboardRows is how many doctors and patients the admin dashboard lists.
const dashboardRows = 5

// AdminDashboard shows the counters and the first doctors and patients.
// The three fetches run concurrently; if any fails the dashboard renders
// whatever is available.
func (s *Screens) AdminDashboard(ctx context.Context) error {
	var (
		stats    *domain.Stats
		doctors  []domain.User
		patients []domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.api.Stats(gctx)
		return err
	})
	g.Go(func() (err error) {
		doctors, err = s.api.ListUsers(gctx, domain.RoleDoctor)
		return err
	})
	g.Go(func() (err error) {
		patients, err = s.api.ListUsers(gctx, domain.RolePatient)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn(ctx, "error fetching dashboard data", map[string]interface{}{"error": err.Error()})
		s.printf("Error fetching data: %v\n\n", err)
	}

	if s.format == FormatYAML {
		return s.yaml(map[string]interface{}{
			"stats":    stats,
			"doctors":  head(doctors),
			"patients": head(patients),
		})
	}

	s.println("Admin Dashboard")
	s.println()
	if stats != nil {
		t := s.table("Total Users", "Total Doctors", "Total Patients", "Total Visits")
		t.row(itoa(stats.TotalUsers), itoa(stats.TotalDoctors), itoa(stats.TotalPatients), itoa(stats.TotalVisits))
		if err := t.flush(); err != nil {
			return err
		}
		s.println()
	}

	s.println("Recent Doctors")
	t := s.table("Name", "Email", "Specialization", "Phone")
	for _, d := range head(doctors) {
		t.row(d.FullName, d.Email, orNA(d.Specialization), orNA(d.PhoneNumber))
	}
	if err := t.flush(); err != nil {
		return err
	}
	s.println()

	s.println("Recent Patients")
	t = s.table("Name", "Email", "Phone", "Gender")
	for _, p := range head(patients) {
		t.row(p.FullName, p.Email, orNA(p.PhoneNumber), orNA(p.Gender))
	}
	return t.flush()
}

func head(users []domain.User) []domain.User {
	if len(users) > dashboardRows {
		return users[:dashboardRows]
	}
	return users
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
