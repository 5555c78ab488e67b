package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/fairdiv/internal/fairdivctl"
)

func utilitarianCmd(a *fairdivctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "utilitarian",
		Short:   "Compute an allocation maximising the sum of utilities",
		Example: `fairdivctl utilitarian --preferences "80,19,1;79,1,20"`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			problem, err := readProblem(cmd.Flags())
			if err != nil {
				return err
			}
			return a.Utilitarian(problem.Preferences)
		},
	}
	addProblemFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("preferences", "file")
	return cmd
}
