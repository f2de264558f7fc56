package cli

import (
	"github.com/Makepad-fr/tadakit/internal/menu"
	"github.com/spf13/cobra"
)

func newMenuCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive numbered menus (login, sign up, manage todos)",
		Args:  posArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.todoManager()
			if err != nil {
				return err
			}
			// Start inside the todo menu when a session is already active.
			user, _ := app.currentUser()

			a := menu.New(app.accounts(), m, app.in, app.out)
			a.Sessions = app.sessions()
			a.Log = app.log.Named("menu")
			return a.Run(user)
		},
	}
}
