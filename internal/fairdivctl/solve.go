package fairdivctl

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"

	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
	"github.com/armadaproject/fairdiv/internal/common/logging"
	"github.com/armadaproject/fairdiv/internal/common/metrics"
	"github.com/armadaproject/fairdiv/internal/common/optimisation/barrier"
	"github.com/armadaproject/fairdiv/internal/common/optimisation/dispatch"
	"github.com/armadaproject/fairdiv/internal/common/optimisation/simplex"
	"github.com/armadaproject/fairdiv/internal/fairness/allocation"
	"github.com/armadaproject/fairdiv/internal/fairness/division"
	"github.com/armadaproject/fairdiv/internal/fairness/equilibrium"
	"github.com/armadaproject/fairdiv/internal/fairness/report"
)

// Egalitarian computes and prints a max-min fair allocation.
func (a *App) Egalitarian(prefs division.Preferences) error {
	return a.run("egalitarian", func(ctx *fairdivcontext.Context, s *allocation.Solver) (*report.Report, error) {
		result, err := s.Egalitarian(ctx, prefs)
		if err != nil {
			return nil, err
		}
		return report.FromEgalitarian(result), nil
	})
}

// Utilitarian computes and prints an allocation maximising the sum of utilities.
func (a *App) Utilitarian(prefs division.Preferences) error {
	return a.run("utilitarian", func(ctx *fairdivcontext.Context, s *allocation.Solver) (*report.Report, error) {
		result, err := s.Utilitarian(ctx, prefs)
		if err != nil {
			return nil, err
		}
		return report.FromResult("utilitarian", result), nil
	})
}

// Nash computes and prints an allocation maximising the product of utilities.
func (a *App) Nash(prefs division.Preferences) error {
	return a.run("nash", func(ctx *fairdivcontext.Context, s *allocation.Solver) (*report.Report, error) {
		result, err := s.Nash(ctx, prefs)
		if err != nil {
			return nil, err
		}
		return report.FromResult("nash", result), nil
	})
}

// NashTwoAgent computes and prints the Nash allocation of the two-agent problem parameterised by t.
func (a *App) NashTwoAgent(t float64) error {
	return a.run("nash-two-agent", func(ctx *fairdivcontext.Context, s *allocation.Solver) (*report.Report, error) {
		result, err := s.NashTwoAgent(ctx, t)
		if err != nil {
			return nil, err
		}
		return report.FromNashTwoAgent(t, result), nil
	})
}

// Equilibrium computes and prints the competitive equilibrium of a Fisher market.
// Agents have equal budgets if budgets is empty.
func (a *App) Equilibrium(prefs division.Preferences, budgets division.Budgets) error {
	if len(budgets) == 0 {
		budgets = division.EqualBudgets(prefs.NumAgents())
	}
	return a.run("equilibrium", func(ctx *fairdivcontext.Context, s *allocation.Solver) (*report.Report, error) {
		result, err := equilibrium.Compute(ctx, s, prefs, budgets)
		if err != nil {
			return nil, err
		}
		return report.FromEquilibrium(budgets, result), nil
	})
}

func (a *App) run(command string, solve func(*fairdivcontext.Context, *allocation.Solver) (*report.Report, error)) error {
	m, hook, err := a.instrumentation()
	if err != nil {
		return errors.WithStack(err)
	}
	solver, err := a.newSolver(m)
	if err != nil {
		return err
	}

	ctx, cancel := fairdivcontext.WithTimeout(
		fairdivcontext.WithLogField(fairdivcontext.New(context.Background(), solveLogger(hook)), "solveId", uuid.NewString()),
		a.Params.Config.Timeout,
	)
	defer cancel()
	ctx.Log.Debugf("running %s", command)

	r, err := solve(ctx, solver)
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(err, "%s timed out after %s", command, a.Params.Config.Timeout)
	} else if err != nil {
		return err
	}
	if !a.Params.Quiet {
		if err := report.Write(a.Out, r, a.outputFormat()); err != nil {
			return err
		}
	}
	if a.Params.PrintMetrics {
		return a.writeMetrics()
	}
	return nil
}

// newSolver returns a solver built from the configured oracles and instrumented with m.
func (a *App) newSolver(m *metrics.Metrics) (*allocation.Solver, error) {
	linear, err := simplex.New(a.Params.Config.Simplex.Tolerance)
	if err != nil {
		return nil, err
	}
	logarithmic, err := barrier.New(a.Params.Config.Barrier)
	if err != nil {
		return nil, err
	}
	oracle, err := dispatch.New(linear, logarithmic)
	if err != nil {
		return nil, err
	}
	return allocation.NewSolver(m.Instrument(oracle), m)
}

// solveLogger returns a logger configured like the standard logger, with hook added.
func solveLogger(hook *logging.PrometheusHook) *logrus.Entry {
	std := logrus.StandardLogger()
	logger := logrus.New()
	logger.SetOutput(std.Out)
	logger.SetFormatter(std.Formatter)
	logger.SetLevel(std.GetLevel())
	logger.AddHook(hook)
	return logrus.NewEntry(logger)
}

func (a *App) writeMetrics() error {
	families, err := a.Registry.Gather()
	if err != nil {
		return errors.WithStack(err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(a.Out, family); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
