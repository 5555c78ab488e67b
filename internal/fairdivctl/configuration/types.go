package configuration

import (
	_ "embed"
	"time"

	"github.com/armadaproject/fairdiv/internal/common/config"
	"github.com/armadaproject/fairdiv/internal/common/logging"
	"github.com/armadaproject/fairdiv/internal/common/optimisation/barrier"
	"github.com/armadaproject/fairdiv/internal/fairness/report"
)

//go:embed config.yaml
var defaults []byte

type Configuration struct {
	Logging logging.Config
	// Format results are written in unless overridden on the command line.
	Output report.Format `validate:"required"`
	// Maximum time allowed for one allocation. Zero means no limit.
	Timeout time.Duration `validate:"gte=0"`
	Simplex SimplexConfig
	Barrier barrier.Config
}

type SimplexConfig struct {
	// Tolerance used by the simplex method when testing for optimality and degeneracy.
	Tolerance float64 `validate:"gt=0,lt=1"`
}

// Load returns the default configuration overridden by userSpecifiedConfigs and the environment.
func Load(userSpecifiedConfigs []string) (Configuration, error) {
	var c Configuration
	_, err := config.LoadConfig(&c, defaults, userSpecifiedConfigs)
	return c, err
}
