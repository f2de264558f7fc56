package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Makepad-fr/tadakit/internal/menu"
	"github.com/Makepad-fr/tadakit/internal/session"
	"github.com/Makepad-fr/tadakit/internal/ui"
	"github.com/spf13/cobra"
)

type credentialFlags struct {
	username      string
	passwordStdin bool
}

func (f *credentialFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "username (prompted when empty)")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
}

// read prompts for whatever the flags did not supply.
func (f *credentialFlags) read(app *App, userLabel, passLabel string) (string, string, error) {
	p := menu.NewPrompter(app.in, app.out)
	username := strings.TrimSpace(f.username)
	var err error
	if username == "" && !f.passwordStdin {
		if username, err = p.Line(userLabel); err != nil {
			return "", "", fmt.Errorf("read username: %w", err)
		}
	}
	if username == "" {
		return "", "", usageErr("username is required")
	}
	label := passLabel
	if f.passwordStdin {
		label = ""
	}
	password, err := p.Password(label)
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	return username, password, nil
}

func newSignupCmd(app *App) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  posArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password, err := f.read(app, "Choose a username: ", "Choose a password: ")
			if err != nil {
				return err
			}
			u, err := app.accounts().Signup(username, password)
			if err != nil {
				return err
			}
			ui.OK(app.out, fmt.Sprintf("signed up %s. You can now log in.", u.Username))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  posArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password, err := f.read(app, "Username: ", "Password: ")
			if err != nil {
				return err
			}
			u, err := app.accounts().Login(username, password)
			if err != nil {
				return err
			}
			if _, err := app.sessions().Save(u.Username); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			ui.OK(app.out, fmt.Sprintf("Login successful. Welcome, %s!", u.Username))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  posArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.sessions()
			info, _ := s.Current()
			if info != nil && info.Source == "env" {
				ui.OK(app.out, "session is provided by "+session.EnvToken+" env var (nothing to delete)")
				return nil
			}
			if err := s.Clear(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(app.out, "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who is logged in",
		Args:  posArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.currentUser()
			if err != nil {
				return err
			}
			info, err := app.sessions().Current()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "user:    %s\n", user)
			fmt.Fprintf(app.out, "source:  %s\n", info.Source)
			if info.ExpiresAt != nil {
				fmt.Fprintf(app.out, "expires: %s\n", info.ExpiresAt.UTC().Format(time.RFC3339))
			} else {
				fmt.Fprintln(app.out, "expires: (never)")
			}
			return nil
		},
	}
}
