package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/fairdiv/internal/fairdivctl"
)

func versionCmd(a *fairdivctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Print version information and the configured oracle settings",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Version()
		},
	}
	return cmd
}
