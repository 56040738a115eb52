package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go.pilab.hu/clinic/session"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage clinicctl configuration and contexts",
	Aliases: []string{"cfg"},
}

// contextView is what get-contexts prints; stored sessions stay private.
type contextView struct {
	Name           string `yaml:"name"`
	ServerEndpoint string `yaml:"server_endpoint"`
	Current        bool   `yaml:"current,omitempty"`
	LoggedIn       bool   `yaml:"logged_in"`
}

var getContextsCmd = &cobra.Command{
	Use:     "get-contexts",
	Short:   "Display the configured contexts",
	Aliases: []string{"get"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		names := cli.cfg.ContextNames()
		if len(names) == 0 {
			fmt.Fprintln(out, "No contexts defined.")
			return nil
		}
		views := make([]contextView, 0, len(names))
		for _, name := range names {
			c := cli.cfg.Config.Contexts[name]
			views = append(views, contextView{
				Name:           name,
				ServerEndpoint: c.ServerEndpoint,
				Current:        strings.EqualFold(name, cli.cfg.Config.CurrentContext),
				LoggedIn:       c.Has(session.StorageKey),
			})
		}
		b, err := yaml.Marshal(views)
		if err != nil {
			return fmt.Errorf("failed to marshal contexts to YAML: %w", err)
		}
		fmt.Fprint(out, string(b))
		return nil
	},
}

var useContextCmd = &cobra.Command{
	Use:     "use-context CONTEXT_NAME",
	Short:   "Set the current context",
	Aliases: []string{"use"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.cfg.UseContext(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q.\n", cli.cfg.Config.CurrentContext)
		return nil
	},
}

var setContextCmd = &cobra.Command{
	Use:     "set-context CONTEXT_NAME",
	Short:   "Create or update a context",
	Aliases: []string{"set"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("endpoint")
		c, err := cli.cfg.SetContext(args[0], server)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Context %q created/modified.\n", c.Name)
		return nil
	},
}

var deleteContextCmd = &cobra.Command{
	Use:     "delete-context CONTEXT_NAME",
	Short:   "Remove a context and its stored session",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.cfg.DeleteContext(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Context %q deleted.\n", args[0])
		return nil
	},
}

var currentContextCmd = &cobra.Command{
	Use:   "current-context",
	Short: "Display the current context",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cli.cfg.Config.CurrentContext == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No current context is set.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.cfg.Config.CurrentContext)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(getContextsCmd, useContextCmd, setContextCmd, deleteContextCmd, currentContextCmd)

	setContextCmd.Flags().String("endpoint", "", "API root of the clinic backend, e.g. http://localhost:8080/api")
}
