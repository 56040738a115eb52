package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/internal/fakebackend"
)

// resetFlags undoes flag values left over from an earlier run of the
// package-level command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_DoctorSession(t *testing.T) {
	backend := fakebackend.New()
	endpoint := backend.Start(t)
	backend.AddUser(domain.User{FullName: "Dr. A", Email: "a@b.com", Role: domain.RoleDoctor}, "pw")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, cfgPath, "config", "set-context", "test", "--endpoint", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, `Context "test" created/modified.`)

	out, err = run(t, cfgPath, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "-> /login")
	assert.NotContains(t, out, "Doctor Dashboard")

	_, err = run(t, cfgPath, "auth", "login", "--email", "a@b.com", "--password", "wrongpass")
	assert.EqualError(t, err, "Invalid credentials")

	out, err = run(t, cfgPath, "auth", "login", "--email", "a@b.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Dr. A (DOCTOR)")
	assert.Contains(t, out, "-> /doctor")
	assert.Equal(t, int64(2), backend.LoginCalls.Load())

	// A new process restores the session from the config file.
	out, err = run(t, cfgPath, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Dr. A (DOCTOR)")
	assert.Contains(t, out, "Doctor Dashboard")
	assert.Equal(t, int64(2), backend.LoginCalls.Load())

	out, err = run(t, cfgPath, "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "-> /login")
	assert.Contains(t, out, "requires the ADMIN role; you are logged in as DOCTOR")
	assert.NotContains(t, out, "Admin Dashboard")

	out, err = run(t, cfgPath, "open", "/doctor/new-visit")
	require.NoError(t, err)
	assert.Contains(t, out, "doctor new-visit --patient ID")

	_, err = run(t, cfgPath, "open", "/nowhere")
	assert.Error(t, err)

	out, err = run(t, cfgPath, "auth", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Role:  DOCTOR")
	assert.Contains(t, out, "Email: a@b.com")

	out, err = run(t, cfgPath, "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "-> /login")

	out, err = run(t, cfgPath, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "-> /login")
	assert.Contains(t, out, "requires a login")

	out, err = run(t, cfgPath, "auth", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "-> /login")
	assert.Contains(t, out, "Not logged in.")
	assert.NotContains(t, out, "Role:")

	out, err = run(t, cfgPath, "config", "get-contexts")
	require.NoError(t, err)
	assert.Contains(t, out, "logged_in: false")
}

func TestCLI_AdminManagesPatients(t *testing.T) {
	backend := fakebackend.New()
	endpoint := backend.Start(t)
	backend.AddUser(domain.User{FullName: "Root", Email: "root@x.com", Role: domain.RoleAdmin}, "pw")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := run(t, cfgPath, "config", "set-context", "test", "--endpoint", endpoint)
	require.NoError(t, err)
	_, err = run(t, cfgPath, "auth", "login", "--email", "root@x.com", "--password", "pw")
	require.NoError(t, err)

	auditPath := filepath.Join(t.TempDir(), "audit.log")
	out, err := run(t, cfgPath, "--audit-log", auditPath, "admin", "patients", "create",
		"--full-name", "Pat", "--email", "pat@x.com", "--password", "secret", "--gender", "F")
	require.NoError(t, err)
	assert.Contains(t, out, "Patient created successfully!")
	trail, err := os.ReadFile(auditPath)
	require.NoError(t, err)
	assert.Contains(t, string(trail), `"action":"user.create"`)
	assert.Contains(t, string(trail), `"user":"1"`)

	out, err = run(t, cfgPath, "admin", "patients", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "pat@x.com")

	out, err = run(t, cfgPath, "--yes", "admin", "patients", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Patient deleted successfully!")
	_, ok := backend.User("2")
	assert.False(t, ok)

	out, err = run(t, cfgPath, "-o", "yaml", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "totalUsers: 1")
	assert.NotContains(t, out, "Health Records System")
}
