package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/session"
)

// identityView is the JSON shape of a session.
type identityView struct {
	LoggedIn bool   `json:"logged_in"`
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
}

func viewIdentity(id session.Identity) identityView {
	return identityView{LoggedIn: id.LoggedIn(), Role: string(id.Role), Email: id.Email}
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <admin|student> <email>",
		Short: "Start a session",
		Long: `Record the role and email used by later commands.

The role selects which commands are available: admins manage the menu
and move orders along; students fill a cart and place orders.

Examples:
  canteen login student asha@college.edu
  canteen login admin kitchen@college.edu`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				role := model.Role(strings.ToLower(strings.TrimSpace(args[0])))
				id, err := e.app.Session.Login(e.ctx, role, args[1])
				if err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(viewIdentity(id), fmt.Sprintf("Logged in as %s (%s)\n", id.Email, id.Role))
			})
		},
	}
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "logout",
		Short:         "End the session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				if err := e.app.Session.Logout(e.ctx); err != nil {
					return e.out.Fail(err)
				}
				return e.out.Success(viewIdentity(session.Identity{}), "Logged out\n")
			})
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "whoami",
		Short:         "Show the current session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				id := e.app.Session.Current()
				text := "Not logged in\n"
				if id.LoggedIn() {
					text = fmt.Sprintf("%s (%s)\n", id.Email, id.Role)
				}
				return e.out.Success(viewIdentity(id), text)
			})
		},
	}
}
