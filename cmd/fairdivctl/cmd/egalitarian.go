package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/fairdiv/internal/fairdivctl"
)

func egalitarianCmd(a *fairdivctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "egalitarian",
		Short: "Compute an allocation maximising the smallest utility",
		Long: `Compute an egalitarian (max-min fair) allocation.

Among the allocations maximising the smallest utility, one is chosen that no other such allocation
improves upon for every agent.`,
		Example: `fairdivctl egalitarian --preferences "80,19,1;79,1,20"`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			problem, err := readProblem(cmd.Flags())
			if err != nil {
				return err
			}
			return a.Egalitarian(problem.Preferences)
		},
	}
	addProblemFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("preferences", "file")
	return cmd
}
