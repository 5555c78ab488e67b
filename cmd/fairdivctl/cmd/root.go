package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/fairdiv/internal/fairdivctl"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	return rootCmdWithApp(fairdivctl.New())
}

// Takes a caller-supplied app struct; useful for testing.
func rootCmdWithApp(a *fairdivctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fairdivctl",
		Short: "fairdivctl computes fair divisions of divisible resources between agents.",
		Long: `fairdivctl computes fair divisions of divisible resources between agents with linear preferences.

Preferences are given as a matrix with one row per agent and one column per resource,
either inline, e.g., --preferences "80,19,1;79,1,20", or in a YAML or JSON file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSlice(
		"config",
		nil,
		"Config files merged over the defaults, in order; ~/.fairdivctl.yaml is used if none are given and it exists",
	)
	cmd.PersistentFlags().VarP(&a.Params.Output, "output", "o", "Output format, one of text, yaml or json; overrides the config")
	cmd.PersistentFlags().BoolVar(&a.Params.PrintMetrics, "print-metrics", false, "Print solver metrics after the result")
	cmd.PersistentFlags().BoolVarP(&a.Params.Quiet, "quiet", "q", false, "Do not print the result")

	cmd.AddCommand(
		egalitarianCmd(a),
		utilitarianCmd(a),
		nashCmd(a),
		nashTwoAgentCmd(a),
		equilibriumCmd(a),
		versionCmd(a),
	)

	return cmd
}
