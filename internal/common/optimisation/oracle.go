package optimisation

import (
	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
)

// Oracle solves convex programs.
//
// Implementations must not retain state between calls.
// An error is returned only if the program is malformed, not supported by the oracle, or the context is done;
// all other outcomes are reported via Solution.Status.
type Oracle interface {
	Solve(ctx *fairdivcontext.Context, p *Program) (*Solution, error)
}

type Status string

const (
	StatusOptimal      Status = "optimal"
	StatusInfeasible   Status = "infeasible"
	StatusUnbounded    Status = "unbounded"
	StatusNotConverged Status = "not_converged"
)

// Solution is the result of solving a program.
// Values is populated only if Status is StatusOptimal.
type Solution struct {
	Status     Status
	Values     []float64
	Objective  float64
	Iterations int
}

func (s *Solution) IsOptimal() bool {
	return s != nil && s.Status == StatusOptimal
}

// Value returns the value of variable v, or 0 if no values are available.
func (s *Solution) Value(v int) float64 {
	if s == nil || v < 0 || v >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}

// Eval returns the value of e at the solution.
func (s *Solution) Eval(e LinearExpr) float64 {
	if s == nil || s.Values == nil {
		return 0
	}
	return e.Eval(s.Values)
}
