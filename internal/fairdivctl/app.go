// Package fairdivctl implements the fairdivctl command line tool.
package fairdivctl

import (
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/armadaproject/fairdiv/internal/common/logging"
	"github.com/armadaproject/fairdiv/internal/common/metrics"
	"github.com/armadaproject/fairdiv/internal/fairdivctl/configuration"
	"github.com/armadaproject/fairdiv/internal/fairness/report"
)

// App is the main fairdivctl application.
type App struct {
	// Parameters passed to the CLI by the user.
	Params *Params
	// Out is typically set to os.Stdout
	Out io.Writer
	// Registry collecting the metrics of every allocation computed by this app.
	Registry *prometheus.Registry

	// Created on first use and registered to Registry.
	metrics *metrics.Metrics
	logHook *logging.PrometheusHook
}

// Params struct holds all user-customizable parameters.
// Using a single struct for all CLI commands ensures that all flags are distinct
// and that they can be provided either dynamically on a command line, or
// statically in a config file that's reused between command runs.
type Params struct {
	Config configuration.Configuration
	// Overrides Config.Output if set.
	Output report.Format
	// Write solver metrics to Out after the result.
	PrintMetrics bool
	// Suppress the report; errors and metrics are still written.
	Quiet bool
}

// New instantiates an App with default parameters, writing to standard output.
// Config is loaded by the caller before running a command.
func New() *App {
	return &App{
		Params:   &Params{},
		Out:      os.Stdout,
		Registry: prometheus.NewRegistry(),
	}
}

func (a *App) outputFormat() report.Format {
	if a.Params.Output != "" {
		return a.Params.Output
	}
	return a.Params.Config.Output
}

func (a *App) instrumentation() (*metrics.Metrics, *logging.PrometheusHook, error) {
	if a.metrics != nil {
		return a.metrics, a.logHook, nil
	}
	m := metrics.New()
	if err := a.Registry.Register(m); err != nil {
		return nil, nil, err
	}
	hook, err := logging.NewPrometheusHook(a.Registry)
	if err != nil {
		return nil, nil, err
	}
	a.metrics, a.logHook = m, hook
	return m, hook, nil
}
