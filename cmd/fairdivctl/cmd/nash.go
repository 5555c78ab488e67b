package cmd

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/fairdivctl"
)

func nashCmd(a *fairdivctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nash",
		Short:   "Compute an allocation maximising the product of utilities",
		Example: `fairdivctl nash --file problem.yaml --output yaml`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			problem, err := readProblem(cmd.Flags())
			if err != nil {
				return err
			}
			return a.Nash(problem.Preferences)
		},
	}
	addProblemFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("preferences", "file")
	return cmd
}

func nashTwoAgentCmd(a *fairdivctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nash-two-agent <t>",
		Short: "Compute the Nash allocation of two resources between two agents",
		Long: `Compute the Nash allocation of two resources between two agents, where the first agent
only values the first resource and the second agent values the resources t and 1-t, for t in [0, 1].`,
		Example: "fairdivctl nash-two-agent 0.75",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return errors.WithStack(&fairdiverrors.ErrInvalidArgument{
					Name:    "t",
					Value:   args[0],
					Message: "not a number",
				})
			}
			return a.NashTwoAgent(t)
		},
	}
	return cmd
}
