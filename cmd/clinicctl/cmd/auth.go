package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.pilab.hu/clinic/guard"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in and out",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session for later commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := navigate(cmd, guard.LoginPath); err != nil {
			return err
		}
		ctx := cmd.Context()

		if current, ok := cli.store.Current(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Already logged in as %s (%s).\n", current.FullName, current.Role)
			if !confirm("Do you want to log in again?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Login cancelled.")
				return nil
			}
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		email = valueOrPrompt(email, "Email: ")
		if password == "" {
			var err error
			if password, err = promptPassword("Password: "); err != nil {
				return err
			}
		}

		sess, err := cli.store.Login(ctx, email, password)
		if err != nil {
			// The message is the backend's own text or "Login failed".
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Welcome, %s (%s)\n", sess.FullName, sess.Role)
		cli.screens.Redirect(sess.Role.HomePath())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.open(cmd); err != nil {
			return err
		}
		cli.store.Logout(cmd.Context())
		cli.screens.Redirect(guard.LoginPath)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.open(cmd); err != nil {
			return err
		}
		current, ok := cli.store.Current()
		if !ok {
			cli.screens.Redirect(guard.LoginPath)
			fmt.Fprintf(cmd.ErrOrStderr(), "Not logged in. Run '%s auth login'.\n", cmd.Root().Name())
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:    %s\nName:  %s\nRole:  %s\n", current.ID, current.FullName, current.Role)
		if email := current.Attribute("email"); email != "" {
			fmt.Fprintf(out, "Email: %s\n", email)
		}
		fmt.Fprintf(out, "Home:  %s\n", current.Role.HomePath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().String("email", "", "account email (prompted when empty)")
	loginCmd.Flags().String("password", "", "account password (prompted without echo when empty)")
}
