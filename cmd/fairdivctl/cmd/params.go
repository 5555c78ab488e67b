package cmd

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/common/logging"
	"github.com/armadaproject/fairdiv/internal/fairdivctl"
	"github.com/armadaproject/fairdiv/internal/fairdivctl/configuration"
)

const userConfigFile = ".fairdivctl.yaml"

// initParams loads configuration into params and applies its logging settings.
func initParams(cmd *cobra.Command, params *fairdivctl.Params) error {
	configFiles, err := cmd.Flags().GetStringSlice("config")
	if err != nil {
		return errors.Errorf("error reading config: %s", err)
	}
	if len(configFiles) == 0 {
		configFiles = defaultConfigFiles()
	}

	config, err := configuration.Load(configFiles)
	if err != nil {
		return err
	}
	params.Config = config
	return logging.ConfigureLogging(config.Logging, os.Stderr)
}

// defaultConfigFiles returns the user config in the home directory, if there is one.
func defaultConfigFiles() []string {
	home, err := homedir.Dir()
	if err != nil {
		log.Debugf("not loading user config: %s", err)
		return nil
	}
	path := filepath.Join(home, userConfigFile)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return []string{path}
}

func addProblemFlags(flags *pflag.FlagSet) {
	flags.StringP("preferences", "p", "", `Preferences of each agent, rows separated by ";", e.g., "80,19,1;79,1,20"`)
	flags.StringP("file", "f", "", "YAML or JSON file holding the problem")
}

// readProblem returns the problem given by the flags added by addProblemFlags.
// A budgets flag, if present and set, overrides budgets given in the file.
func readProblem(flags *pflag.FlagSet) (*fairdivctl.Problem, error) {
	file, err := flags.GetString("file")
	if err != nil {
		return nil, errors.Errorf("error reading file: %s", err)
	}
	preferences, err := flags.GetString("preferences")
	if err != nil {
		return nil, errors.Errorf("error reading preferences: %s", err)
	}

	problem := &fairdivctl.Problem{}
	switch {
	case file != "":
		problem, err = fairdivctl.LoadProblem(file)
	case preferences != "":
		problem.Preferences, err = fairdivctl.ParseMatrix(preferences)
	default:
		err = errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "preferences",
			Value:   "",
			Message: "one of --preferences or --file is required",
		})
	}
	if err != nil {
		return nil, err
	}

	if flags.Lookup("budgets") != nil && flags.Changed("budgets") {
		budgets, err := flags.GetString("budgets")
		if err != nil {
			return nil, errors.Errorf("error reading budgets: %s", err)
		}
		if problem.Budgets, err = fairdivctl.ParseVector(budgets); err != nil {
			return nil, err
		}
	}
	return problem, nil
}
