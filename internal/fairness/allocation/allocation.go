// Package allocation computes fair allocations of divisible resources under several criteria.
//
// Solvers never return an error because the oracle failed to find an optimum.
// Instead, results carry StatusNonOptimal and their numbers must not be trusted.
package allocation

import (
	"math"

	"github.com/pkg/errors"

	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/common/optimisation"
	"github.com/armadaproject/fairdiv/internal/fairness/division"
	"github.com/armadaproject/fairdiv/internal/fairness/program"
)

// Status is the outcome of an allocation as reported to callers.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusNonOptimal Status = "non optimal"
)

// Relative slack given to the minimum utility when selecting a Pareto-efficient egalitarian allocation.
const paretoSlack = 1e-9

// Reporter records the outcome of each allocation requested from a Solver.
// Auxiliary programs, such as the refinement step of Egalitarian, are not reported separately.
type Reporter interface {
	ReportAllocation(criterion string, status string)
}

// Result is an allocation and the utility it gives each agent.
// If Status is StatusNonOptimal, Allocation is nil and Utilities are zero.
type Result struct {
	Status     Status
	Allocation division.Allocation
	Utilities  []float64
}

// IsOptimal returns true if r is non-nil and its allocation can be trusted.
func (r *Result) IsOptimal() bool {
	return r != nil && r.Status == StatusOptimal
}

// EgalitarianResult is a max-min fair allocation together with the maximised minimum utility.
type EgalitarianResult struct {
	Result
	OptimalValue float64
}

// NashTwoAgentResult holds the shares given to the first agent by NashTwoAgent;
// the second agent receives the remainder.
type NashTwoAgentResult struct {
	Status           Status
	ShareOfResource1 float64
	ShareOfResource2 float64
	Allocation       division.Allocation
}

// Solver computes allocations by formulating them as programs and solving them with an oracle.
type Solver struct {
	oracle   optimisation.Oracle
	reporter Reporter
}

// NewSolver returns a solver backed by oracle. reporter may be nil.
func NewSolver(oracle optimisation.Oracle, reporter Reporter) (*Solver, error) {
	if oracle == nil {
		return nil, errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "oracle",
			Value:   nil,
			Message: "oracle is required",
		})
	}
	return &Solver{oracle: oracle, reporter: reporter}, nil
}

func MustNewSolver(oracle optimisation.Oracle, reporter Reporter) *Solver {
	s, err := NewSolver(oracle, reporter)
	if err != nil {
		panic(err)
	}
	return s
}

// Egalitarian returns an allocation maximising the minimum utility across agents.
//
// Among all such allocations, one is chosen where no agent can be made better off without making the worst-off agent
// worse off, by maximising the sum of utilities subject to every agent receiving at least the optimal minimum.
func (s *Solver) Egalitarian(ctx *fairdivcontext.Context, prefs division.Preferences) (*EgalitarianResult, error) {
	m, solution, err := s.solve(ctx, prefs, program.Egalitarian{})
	if err != nil {
		return nil, err
	}
	s.report(ctx, program.Egalitarian{}, solution)
	if !solution.IsOptimal() {
		return &EgalitarianResult{Result: nonOptimal(prefs)}, nil
	}
	z := solution.Value(m.MinUtility)
	alloc := m.Allocation(solution)

	floor := z - paretoSlack*math.Max(1, math.Abs(z))
	refined, refinedSolution, err := s.solve(ctx, prefs, program.Utilitarian{Floor: floor})
	if err != nil {
		return nil, err
	}
	if refinedSolution.IsOptimal() {
		alloc = refined.Allocation(refinedSolution)
	} else {
		ctx.Log.Warnf("could not refine egalitarian allocation; oracle status is %s", refinedSolution.Status)
	}
	if prefs.IsZero() {
		z = 0
	}
	ctx.Log.Debugf("egalitarian allocation has minimum utility %v", z)
	return &EgalitarianResult{
		Result: Result{
			Status:     StatusOptimal,
			Allocation: alloc,
			Utilities:  division.Utilities(prefs, alloc),
		},
		OptimalValue: z,
	}, nil
}

// Utilitarian returns an allocation maximising the sum of utilities.
func (s *Solver) Utilitarian(ctx *fairdivcontext.Context, prefs division.Preferences) (*Result, error) {
	return s.allocate(ctx, prefs, program.Utilitarian{})
}

// Nash returns an allocation maximising the product of utilities.
func (s *Solver) Nash(ctx *fairdivcontext.Context, prefs division.Preferences) (*Result, error) {
	return s.allocate(ctx, prefs, program.Nash{})
}

// Fisher returns the equilibrium allocation of a Fisher market with the given budgets,
// i.e., an allocation maximising the budget-weighted sum of log utilities.
func (s *Solver) Fisher(ctx *fairdivcontext.Context, prefs division.Preferences, budgets division.Budgets) (*Result, error) {
	return s.allocate(ctx, prefs, program.Fisher{Budgets: budgets})
}

// NashTwoAgent returns the Nash allocation between two agents and two resources,
// where the first agent only values the first resource and the second values them t and 1-t respectively.
// The first agent gets everything of the first resource for t <= 1/2 and a share of 1/(2t) otherwise.
func (s *Solver) NashTwoAgent(ctx *fairdivcontext.Context, t float64) (*NashTwoAgentResult, error) {
	if !(t >= 0 && t <= 1) {
		return nil, errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "t",
			Value:   t,
			Message: "outside allowed range [0, 1]",
		})
	}
	result, err := s.Nash(ctx, division.Preferences{{1, 0}, {t, 1 - t}})
	if err != nil {
		return nil, err
	}
	if !result.IsOptimal() {
		return &NashTwoAgentResult{Status: result.Status}, nil
	}
	return &NashTwoAgentResult{
		Status:           result.Status,
		ShareOfResource1: result.Allocation.Share(0, 0),
		ShareOfResource2: result.Allocation.Share(1, 0),
		Allocation:       result.Allocation,
	}, nil
}

func (s *Solver) allocate(ctx *fairdivcontext.Context, prefs division.Preferences, criterion program.Criterion) (*Result, error) {
	m, solution, err := s.solve(ctx, prefs, criterion)
	if err != nil {
		return nil, err
	}
	s.report(ctx, criterion, solution)
	if !solution.IsOptimal() {
		rv := nonOptimal(prefs)
		return &rv, nil
	}
	alloc := m.Allocation(solution)
	return &Result{
		Status:     StatusOptimal,
		Allocation: alloc,
		Utilities:  division.Utilities(prefs, alloc),
	}, nil
}

func (s *Solver) solve(ctx *fairdivcontext.Context, prefs division.Preferences, criterion program.Criterion) (*program.Model, *optimisation.Solution, error) {
	m, err := program.Build(prefs, criterion)
	if err != nil {
		return nil, nil, err
	}
	solution, err := s.oracle.Solve(ctx, m.Program)
	if err != nil {
		return nil, nil, errors.WithMessagef(err, "solving %s program", criterion.Name())
	}
	return m, solution, nil
}

func (s *Solver) report(ctx *fairdivcontext.Context, criterion program.Criterion, solution *optimisation.Solution) {
	status := StatusOptimal
	if !solution.IsOptimal() {
		status = StatusNonOptimal
		ctx.Log.Debugf("%s program not solved to optimality; oracle status is %s", criterion.Name(), solution.Status)
	}
	if s.reporter != nil {
		s.reporter.ReportAllocation(criterion.Name(), string(status))
	}
}

func nonOptimal(prefs division.Preferences) Result {
	return Result{
		Status:    StatusNonOptimal,
		Utilities: make([]float64, prefs.NumAgents()),
	}
}
