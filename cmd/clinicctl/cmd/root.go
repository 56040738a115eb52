package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"go.pilab.hu/clinic/config"
)

var (
	cfgFile   string
	assumeYes bool
	cli       *app
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "clinicctl is a terminal client for the clinic health records system",
	Long: `A command-line client for the clinic health records backend.

Every screen of the system is a command. Commands check the logged-in
session against the screen's required role before they render; without a
matching session they send you to the login screen.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env file is fine.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		a, err := newApp(cmd, cfgFile)
		if err != nil {
			return err
		}
		cli = a
		cli.logger.Debug(cmd.Context(), "clinicctl starting", map[string]interface{}{
			"command": cmd.CommandPath(),
			"config":  cli.cfg.Path(),
		})
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cli.close(cmd.Context())
	},
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if cli != nil {
			cli.logger.Debug(ctx, "command failed", map[string]interface{}{"error": err.Error()})
			_ = cli.close(ctx)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default is $HOME/.%s/config.yaml)", config.AppName))
	flags.String("server", "", "backend API root, overrides the current context's endpoint")
	flags.String("session-backend", config.BackendConfig, "where the session is kept: config, redis or memory")
	flags.String("redis-addr", "localhost:6379", "redis address for --session-backend=redis")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", "console", "log format: console or json")
	flags.StringP("output", "o", "table", "output format: table or yaml")
	flags.Bool("trace", false, "print OpenTelemetry spans to stderr")
	flags.String("metrics-textfile", "", "write Prometheus metrics to this file on exit")
	flags.String("audit-log", "", "append audit events (logins, account and visit changes) to this file")
	flags.Duration("timeout", 0, "backend request timeout (default 15s)")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")
}
