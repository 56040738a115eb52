package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.pilab.hu/clinic/domain"
	"go.pilab.hu/clinic/dto"
	"go.pilab.hu/clinic/guard"
)

var openCmd = &cobra.Command{
	Use:   "open PATH",
	Short: "Open a screen by its path, e.g. /admin or /doctor",
	Long: `Open a screen by its path. Known paths:

  /login /register /admin /admin/doctors /admin/patients
  /doctor /doctor/new-visit /patient`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, ok, err := navigate(cmd, args[0])
		if err != nil || !ok {
			return err
		}
		route, _ := guard.Lookup(args[0])
		ctx := cmd.Context()
		s := cli.screens
		root := cmd.Root().Name()

		switch route.Path {
		case "/login":
			if current != nil {
				s.Redirect(current.Role.HomePath())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run '%s auth login' to log in.\n", root)
		case "/register":
			fmt.Fprintf(cmd.OutOrStdout(), "Run '%s register' to create an account.\n", root)
		case "/admin":
			return s.AdminDashboard(ctx)
		case "/admin/doctors":
			return s.ListUsers(ctx, domain.RoleDoctor)
		case "/admin/patients":
			return s.ListUsers(ctx, domain.RolePatient)
		case "/doctor":
			return s.DoctorDashboard(ctx, current)
		case "/doctor/new-visit":
			if err := s.Patients(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nRun '%s doctor new-visit --patient ID' to record a visit.\n", root)
		case "/patient":
			return s.PatientDashboard(ctx, current)
		}
		return nil
	},
}

// Account form flags, shared by register and the management commands.
func addUserFormFlags(flags *pflag.FlagSet, withRole bool) {
	flags.String("full-name", "", "full name (prompted when empty)")
	flags.String("email", "", "email (prompted when empty)")
	flags.String("password", "", "password (prompted without echo when empty)")
	flags.String("phone", "", "phone number")
	flags.String("gender", "", "gender")
	flags.String("dob", "", "date of birth, YYYY-MM-DD")
	flags.String("address", "", "address")
	flags.String("specialization", "", "specialization, doctors only")
	if withRole {
		flags.String("role", string(domain.RolePatient), "account role: PATIENT or DOCTOR")
	}
}

func userForm(cmd *cobra.Command, confirmPassword bool) (dto.UserForm, error) {
	flags := cmd.Flags()
	get := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	form := dto.UserForm{
		FullName:       valueOrPrompt(get("full-name"), "Full name: "),
		Email:          valueOrPrompt(get("email"), "Email: "),
		Password:       get("password"),
		PhoneNumber:    get("phone"),
		Gender:         get("gender"),
		DateOfBirth:    get("dob"),
		Address:        get("address"),
		Specialization: get("specialization"),
	}
	if flags.Lookup("role") != nil {
		form.Role = get("role")
	}

	if form.Password == "" {
		var err error
		if form.Password, err = promptPassword("Password: "); err != nil {
			return dto.UserForm{}, err
		}
		if confirmPassword {
			if form.ConfirmPassword, err = promptPassword("Confirm password: "); err != nil {
				return dto.UserForm{}, err
			}
		}
	} else {
		form.ConfirmPassword = form.Password
	}
	return form, nil
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok, err := navigate(cmd, "/register"); err != nil || !ok {
			return err
		}
		form, err := userForm(cmd, true)
		if err != nil {
			return err
		}
		if err := cli.screens.Register(cmd.Context(), form); err != nil {
			return err
		}
		cli.screens.Redirect(guard.LoginPath)
		return nil
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin dashboard: counters, doctors and patients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok, err := navigate(cmd, "/admin"); err != nil || !ok {
			return err
		}
		return cli.screens.AdminDashboard(cmd.Context())
	},
}

// manageCmd builds the doctors and patients command groups.
func manageCmd(role domain.Role, use, path string) *cobra.Command {
	group := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Manage %s accounts (admin only)", use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok, err := navigate(cmd, path); err != nil || !ok {
				return err
			}
			return cli.screens.ListUsers(cmd.Context(), role)
		},
	}

	list := &cobra.Command{
		Use:     "list",
		Short:   fmt.Sprintf("List %s", use),
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE:    group.RunE,
	}

	create := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s account", role),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok, err := navigate(cmd, path); err != nil || !ok {
				return err
			}
			form, err := userForm(cmd, false)
			if err != nil {
				return err
			}
			_, err = cli.screens.CreateUser(cmd.Context(), role, form)
			return err
		},
	}
	addUserFormFlags(create.Flags(), false)

	del := &cobra.Command{
		Use:     "delete ID",
		Short:   fmt.Sprintf("Delete a %s account", role),
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok, err := navigate(cmd, path); err != nil || !ok {
				return err
			}
			_, err := cli.screens.DeleteUser(cmd.Context(), role, domain.ID(args[0]))
			return err
		},
	}

	group.AddCommand(list, create, del)
	return group
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Doctor dashboard: your visits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, ok, err := navigate(cmd, "/doctor")
		if err != nil || !ok {
			return err
		}
		return cli.screens.DoctorDashboard(cmd.Context(), current)
	},
}

var newVisitCmd = &cobra.Command{
	Use:   "new-visit",
	Short: "Record a visit for one of the patients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, ok, err := navigate(cmd, "/doctor/new-visit")
		if err != nil || !ok {
			return err
		}
		flags := cmd.Flags()
		get := func(name string) string {
			v, _ := flags.GetString(name)
			return v
		}
		patient := get("patient")
		if patient == "" {
			if err := cli.screens.Patients(cmd.Context()); err != nil {
				return err
			}
			patient = prompt("Patient ID: ")
		}
		form := dto.VisitForm{
			PatientID:           patient,
			VisitDate:           get("date"),
			ReasonForVisit:      get("reason"),
			Symptoms:            get("symptoms"),
			Diagnosis:           get("diagnosis"),
			PrescribedMedicines: get("medicines"),
			HeightCm:            get("height"),
			WeightKg:            get("weight"),
			BloodPressure:       get("blood-pressure"),
			Pulse:               get("pulse"),
			Temperature:         get("temperature"),
			Notes:               get("notes"),
		}
		_, err = cli.screens.NewVisit(cmd.Context(), current, form)
		return err
	},
}

func visitCmd(path string) *cobra.Command {
	return &cobra.Command{
		Use:   "visit ID",
		Short: "Show the details of one visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok, err := navigate(cmd, path); err != nil || !ok {
				return err
			}
			return cli.screens.VisitDetails(cmd.Context(), domain.ID(args[0]))
		},
	}
}

var patientCmd = &cobra.Command{
	Use:   "patient",
	Short: "Patient dashboard: your profile and visits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, ok, err := navigate(cmd, "/patient")
		if err != nil || !ok {
			return err
		}
		return cli.screens.PatientDashboard(cmd.Context(), current)
	},
}

func init() {
	rootCmd.AddCommand(openCmd, registerCmd, adminCmd, doctorCmd, patientCmd)
	adminCmd.AddCommand(
		manageCmd(domain.RoleDoctor, "doctors", "/admin/doctors"),
		manageCmd(domain.RolePatient, "patients", "/admin/patients"),
	)
	doctorCmd.AddCommand(newVisitCmd, visitCmd("/doctor"))
	patientCmd.AddCommand(visitCmd("/patient"))

	addUserFormFlags(registerCmd.Flags(), true)

	f := newVisitCmd.Flags()
	f.String("patient", "", "patient ID (chosen from the patient list when empty)")
	f.String("date", "", "visit date and time, YYYY-MM-DDTHH:MM (default now)")
	f.String("reason", "", "reason for visit")
	f.String("symptoms", "", "symptoms")
	f.String("diagnosis", "", "diagnosis")
	f.String("medicines", "", "prescribed medicines")
	f.String("height", "", "height in cm")
	f.String("weight", "", "weight in kg")
	f.String("blood-pressure", "", "blood pressure, e.g. 120/80")
	f.String("pulse", "", "pulse, beats per minute")
	f.String("temperature", "", "body temperature in °C")
	f.String("notes", "", "notes")
}
