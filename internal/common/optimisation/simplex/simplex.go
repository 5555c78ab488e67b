// Package simplex solves programs with linear objectives using gonum's implementation of the simplex method.
package simplex

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/common/optimisation"
)

// DefaultTolerance is the reduced-cost tolerance used by lp.Simplex to decide optimality.
const DefaultTolerance = 1e-10

// Tolerance on the residual of rows dropped as linearly dependent.
const dependentRowTol = 1e-7

// Oracle solves linear programs.
type Oracle struct {
	tolerance float64
}

func New(tolerance float64) (*Oracle, error) {
	if !(tolerance > 0) || math.IsInf(tolerance, 1) {
		return nil, errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "tolerance",
			Value:   tolerance,
			Message: "outside allowed range (0, Inf)",
		})
	}
	return &Oracle{tolerance: tolerance}, nil
}

func MustNew(tolerance float64) *Oracle {
	oracle, err := New(tolerance)
	if err != nil {
		panic(err)
	}
	return oracle
}

func (o *Oracle) Solve(ctx *fairdivcontext.Context, p *optimisation.Program) (*optimisation.Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !p.Objective.IsLinear() {
		return nil, errors.WithStack(&fairdiverrors.ErrNotSupported{
			Component: "simplex oracle",
			Feature:   "logarithmic objectives",
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	sf := newStandardForm(p)
	r, outcome, err := sf.reduce(o.tolerance)
	if err != nil {
		return nil, err
	}
	switch outcome {
	case reductionInfeasible:
		return &optimisation.Solution{Status: optimisation.StatusInfeasible}, nil
	case reductionUnbounded:
		return &optimisation.Solution{Status: optimisation.StatusUnbounded}, nil
	}

	ry := make([]float64, len(r.cols))
	if r.a != nil {
		var status optimisation.Status
		ry, status = o.simplex(ctx, r)
		if status != optimisation.StatusOptimal {
			return &optimisation.Solution{Status: status}, nil
		}
	}
	y := r.expand(sf.n, ry)
	if v := sf.violation(r.dependent, y); v > dependentRowTol {
		ctx.Log.Debugf("dependent row violated by %g", v)
		return &optimisation.Solution{Status: optimisation.StatusInfeasible}, nil
	}
	x := sf.variables(y)
	return &optimisation.Solution{
		Status:    optimisation.StatusOptimal,
		Values:    x,
		Objective: p.Objective.Eval(x),
	}, nil
}

func (o *Oracle) simplex(ctx *fairdivcontext.Context, r *reduced) (y []float64, status optimisation.Status) {
	defer func() {
		// lp.Simplex panics on some numerically degenerate inputs.
		if rec := recover(); rec != nil {
			ctx.Log.Warnf("simplex panicked: %v", rec)
			y, status = nil, optimisation.StatusNotConverged
		}
	}()
	_, y, err := lp.Simplex(r.c, r.a, r.b, o.tolerance, nil)
	switch {
	case err == nil:
		return y, optimisation.StatusOptimal
	case errors.Is(err, lp.ErrInfeasible):
		return nil, optimisation.StatusInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return nil, optimisation.StatusUnbounded
	default:
		ctx.Log.Debugf("simplex did not converge: %s", err)
		return nil, optimisation.StatusNotConverged
	}
}
