package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.pilab.hu/clinic/guard"
	"go.pilab.hu/clinic/screens"
	"go.pilab.hu/clinic/session"
)

// navigate opens the session and asks the guard whether path may render.
// When it may not, the redirect (or the loading placeholder) is printed and
// ok is false.
func navigate(cmd *cobra.Command, path string) (current *session.Session, ok bool, err error) {
	if err := cli.open(cmd); err != nil {
		return nil, false, err
	}
	ctx := cmd.Context()

	route, d, err := cli.guard.Navigate(ctx, path)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}

	current, _ = cli.store.Current()
	switch d.Outcome {
	case guard.Loading:
		cli.screens.Loading()
		return nil, false, nil
	case guard.Redirect:
		cli.screens.Redirect(d.Location)
		if d.Location == guard.LoginPath && !route.Public && route.RedirectTo == "" {
			if current == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s requires a login. Run '%s auth login'.\n", route.Title, cmd.Root().Name())
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s requires the %s role; you are logged in as %s.\n", route.Title, route.RequiredRole, current.Role)
			}
		}
		return nil, false, nil
	}

	if cli.settings.Output != screens.FormatYAML {
		cli.screens.Navbar(current)
	}
	return current, true, nil
}
