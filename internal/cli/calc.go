package cli

import (
	"fmt"

	"github.com/Makepad-fr/tadakit/internal/calc"
	"github.com/spf13/cobra"
)

// NewCalcCmd is the calculator command. It serves both as `tada calc` and
// as the root of the standalone calc binary.
func NewCalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Console calculator (add, subtract, multiply, divide, velocity)",
		Long: `calc - a simple console calculator

Without a subcommand it starts the numbered menu.`,
		Example: `  calc
  calc ops
  calc eval 2 + 3
  calc eval 10 / -4
  calc velocity 100 9.58`,
		Args:          posArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return calc.NewSession(cmd.InOrStdin(), cmd.OutOrStdout()).RunMenu()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "menu",
			Short: "Numbered menu: 1-4 arithmetic, 5 velocity, 6 exit",
			Args:  posArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				return calc.NewSession(cmd.InOrStdin(), cmd.OutOrStdout()).RunMenu()
			},
		},
		&cobra.Command{
			Use:   "ops",
			Short: "Operator prompt: + - * / or q to quit",
			Args:  posArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				return calc.NewSession(cmd.InOrStdin(), cmd.OutOrStdout()).RunOperators()
			},
		},
		&cobra.Command{
			Use:                "eval <a> <op> <b>",
			Short:              "Evaluate one expression",
			DisableFlagParsing: true, // negative operands look like flags
			Args:               posArgs(cobra.ExactArgs(3)),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := calc.ParseNumber(args[0])
				if err != nil {
					return usageWrap(err)
				}
				b, err := calc.ParseNumber(args[2])
				if err != nil {
					return usageWrap(err)
				}
				res, err := calc.Apply(args[1], a, b)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s = %s\n",
					calc.FormatNumber(a), args[1], calc.FormatNumber(b), calc.FormatNumber(res))
				return nil
			},
		},
		&cobra.Command{
			Use:                "velocity <distance> <time>",
			Short:              "Distance divided by time",
			DisableFlagParsing: true,
			Args:               posArgs(cobra.ExactArgs(2)),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := calc.ParseNumber(args[0])
				if err != nil {
					return usageWrap(err)
				}
				t, err := calc.ParseNumber(args[1])
				if err != nil {
					return usageWrap(err)
				}
				v, err := calc.Velocity(d, t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Velocity = %s / %s = %s units/time\n",
					calc.FormatNumber(d), calc.FormatNumber(t), calc.FormatNumber(v))
				return nil
			},
		},
	)
	return cmd
}
