package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the tada command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "tada",
		Short: "A small multi-user todo list",
		Long: `tada - a tiny multi-user todo CLI

Sign up, log in, then manage your own todos. Todos and users live in
todos.json and users.json (see --data-dir).`,
		Example: `  tada signup
  tada login
  tada add "Buy milk" --priority high
  tada ls --group
  tada done 2
  tada rm 3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
	}
	root.SetIn(app.in)
	root.SetOut(app.out)
	root.SetErr(app.errOut)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageWrap(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&app.opts.ConfigPath, "config", "", "config file (default: $TADA_CONFIG, ./.tada.yaml, ~/.config/tada/config.yaml)")
	pf.StringVar(&app.opts.DataDir, "data-dir", "", "directory holding users.json and todos.json")
	pf.StringVar(&app.opts.Theme, "theme", "", "output theme: classic, neon or mono")
	pf.BoolVar(&app.opts.Debug, "debug", false, "verbose logging on stderr")

	root.AddCommand(
		newSignupCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newAddCmd(app),
		newListCmd(app),
		newShowCmd(app),
		newEditCmd(app),
		newDoneCmd(app),
		newReopenCmd(app),
		newRemoveCmd(app),
		newTUICmd(app),
		newMenuCmd(app),
		NewCalcCmd(),
	)
	return root
}

// posArgs wraps a cobra positional-args check so failures exit with code 2.
func posArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		return usageWrap(check(cmd, a))
	}
}
