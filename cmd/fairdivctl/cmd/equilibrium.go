package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/fairdiv/internal/fairdivctl"
)

func equilibriumCmd(a *fairdivctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equilibrium",
		Short: "Compute the competitive equilibrium of a Fisher market",
		Long: `Compute the competitive equilibrium of a Fisher market: an allocation together with prices
at which every agent, spending its whole budget on the resources it values most per unit of money,
buys exactly its bundle.

Agents have equal budgets unless budgets are given.`,
		Example: `fairdivctl equilibrium --preferences "8,4,2;2,6,5" --budgets 60,40`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			problem, err := readProblem(cmd.Flags())
			if err != nil {
				return err
			}
			return a.Equilibrium(problem.Preferences, problem.Budgets)
		},
	}
	addProblemFlags(cmd.Flags())
	cmd.Flags().StringP("budgets", "b", "", "Comma-separated budget of each agent; overrides budgets in the file")
	cmd.MarkFlagsMutuallyExclusive("preferences", "file")
	return cmd
}
