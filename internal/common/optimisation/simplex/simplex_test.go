package simplex

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/common/optimisation"
)

var inf = math.Inf(1)

func expr(terms ...optimisation.Term) optimisation.LinearExpr {
	return optimisation.LinearExpr{Terms: terms}
}

func term(v int, coeff float64) optimisation.Term {
	return optimisation.Term{Var: v, Coeff: coeff}
}

func TestNew(t *testing.T) {
	_, err := New(0)
	assert.True(t, fairdiverrors.IsInvalidArgument(err))
	_, err = New(math.NaN())
	assert.True(t, fairdiverrors.IsInvalidArgument(err))
	_, err = New(inf)
	assert.True(t, fairdiverrors.IsInvalidArgument(err))
	oracle, err := New(DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, DefaultTolerance, oracle.tolerance)
	assert.Panics(t, func() { MustNew(-1) })
}

func TestSolve(t *testing.T) {
	tests := map[string]struct {
		build             func(p *optimisation.Program)
		expectedStatus    optimisation.Status
		expectedValues    []float64
		expectedObjective float64
	}{
		"textbook": {
			build: func(p *optimisation.Program) {
				x := p.AddVariable("x", 0, inf)
				y := p.AddVariable("y", 0, inf)
				p.AddConstraint("a", expr(term(x, 1), term(y, 2)), optimisation.LessOrEqual, 4)
				p.AddConstraint("b", expr(term(x, 3), term(y, 1)), optimisation.LessOrEqual, 6)
				p.AddObjectiveTerm(1, expr(term(x, 1), term(y, 1)), false)
			},
			expectedStatus:    optimisation.StatusOptimal,
			expectedValues:    []float64{1.6, 1.2},
			expectedObjective: 2.8,
		},
		"max-min over one resource": {
			build: func(p *optimisation.Program) {
				a := p.AddVariable("a", 0, 1)
				b := p.AddVariable("b", 0, 1)
				z := p.AddVariable("z", math.Inf(-1), inf)
				p.AddConstraint("resource", expr(term(a, 1), term(b, 1)), optimisation.Equal, 1)
				p.AddConstraint("agent 1", expr(term(a, 30), term(z, -1)), optimisation.GreaterOrEqual, 0)
				p.AddConstraint("agent 2", expr(term(b, 10), term(z, -1)), optimisation.GreaterOrEqual, 0)
				p.AddObjectiveTerm(1, expr(term(z, 1)), false)
			},
			expectedStatus:    optimisation.StatusOptimal,
			expectedValues:    []float64{0.25, 0.75, 7.5},
			expectedObjective: 7.5,
		},
		"free variable": {
			build: func(p *optimisation.Program) {
				z := p.AddVariable("z", math.Inf(-1), inf)
				p.AddConstraint("cap", expr(term(z, 1)), optimisation.LessOrEqual, 3)
				p.AddObjectiveTerm(1, expr(term(z, 1)), false)
			},
			expectedStatus:    optimisation.StatusOptimal,
			expectedValues:    []float64{3},
			expectedObjective: 3,
		},
		"upper bound only": {
			build: func(p *optimisation.Program) {
				x := p.AddVariable("x", math.Inf(-1), 5)
				p.AddConstraint("floor", expr(term(x, 1)), optimisation.GreaterOrEqual, -2)
				p.AddObjectiveTerm(1, expr(term(x, -1)), false)
			},
			expectedStatus:    optimisation.StatusOptimal,
			expectedValues:    []float64{-2},
			expectedObjective: 2,
		},
		"fixed variable and explicit upper bound": {
			build: func(p *optimisation.Program) {
				x := p.AddVariable("x", 2, 2)
				y := p.AddVariable("y", 0, 10)
				p.AddConstraint("y below x", expr(term(y, 1), term(x, -1)), optimisation.LessOrEqual, 0)
				p.AddObjectiveTerm(1, expr(term(y, 1)), false)
			},
			expectedStatus:    optimisation.StatusOptimal,
			expectedValues:    []float64{2, 2},
			expectedObjective: 2,
		},
		"bound not implied by any row": {
			build: func(p *optimisation.Program) {
				x := p.AddVariable("x", 0, 0.5)
				p.AddObjectiveTerm(1, expr(term(x, 1)), false)
			},
			expectedStatus:    optimisation.StatusOptimal,
			expectedValues:    []float64{0.5},
			expectedObjective: 0.5,
		},
		"exactly determined": {
			build: func(p *optimisation.Program) {
				a := p.AddVariable("a", 0, 1)
				b := p.AddVariable("b", 0, 1)
				p.AddConstraint("sum", expr(term(a, 1), term(b, 1)), optimisation.Equal, 1)
				p.AddConstraint("equal", expr(term(a, 1), term(b, -1)), optimisation.Equal, 0)
				p.AddObjectiveTerm(1, expr(term(a, 1)), false)
			},
			expectedStatus:    optimisation.StatusOptimal,
			expectedValues:    []float64{0.5, 0.5},
			expectedObjective: 0.5,
		},
		"duplicated rows": {
			build: func(p *optimisation.Program) {
				a := p.AddVariable("a", 0, 1)
				b := p.AddVariable("b", 0, 1)
				p.AddConstraint("sum", expr(term(a, 1), term(b, 1)), optimisation.Equal, 1)
				p.AddConstraint("sum again", expr(term(a, 2), term(b, 2)), optimisation.Equal, 2)
				p.AddObjectiveTerm(1, expr(term(a, 2), term(b, 1)), false)
			},
			expectedStatus:    optimisation.StatusOptimal,
			expectedValues:    []float64{1, 0},
			expectedObjective: 2,
		},
		"conflicting duplicated rows": {
			build: func(p *optimisation.Program) {
				a := p.AddVariable("a", 0, 1)
				b := p.AddVariable("b", 0, 1)
				p.AddConstraint("sum", expr(term(a, 1), term(b, 1)), optimisation.Equal, 1)
				p.AddConstraint("sum again", expr(term(a, 2), term(b, 2)), optimisation.Equal, 3)
				p.AddObjectiveTerm(1, expr(term(a, 1)), false)
			},
			expectedStatus: optimisation.StatusInfeasible,
		},
		"infeasible": {
			build: func(p *optimisation.Program) {
				x := p.AddVariable("x", 0, 1)
				y := p.AddVariable("y", 0, 1)
				p.AddConstraint("sum", expr(term(x, 1), term(y, 1)), optimisation.Equal, 1)
				p.AddConstraint("too much", expr(term(x, 1)), optimisation.GreaterOrEqual, 2)
				p.AddObjectiveTerm(1, expr(term(x, 1)), false)
			},
			expectedStatus: optimisation.StatusInfeasible,
		},
		"empty row with non-zero right-hand side": {
			build: func(p *optimisation.Program) {
				x := p.AddVariable("x", 0, 1)
				p.AddConstraint("empty", expr(term(x, 0)), optimisation.Equal, 1)
			},
			expectedStatus: optimisation.StatusInfeasible,
		},
		"unbounded": {
			build: func(p *optimisation.Program) {
				x := p.AddVariable("x", 0, inf)
				y := p.AddVariable("y", 0, inf)
				p.AddConstraint("diff", expr(term(x, 1), term(y, -1)), optimisation.LessOrEqual, 1)
				p.AddObjectiveTerm(1, expr(term(x, 1)), false)
			},
			expectedStatus: optimisation.StatusUnbounded,
		},
		"unbounded unconstrained variable": {
			build: func(p *optimisation.Program) {
				x := p.AddVariable("x", 0, inf)
				p.AddObjectiveTerm(1, expr(term(x, 1)), false)
			},
			expectedStatus: optimisation.StatusUnbounded,
		},
		"constant objective": {
			build: func(p *optimisation.Program) {
				x := p.AddVariable("x", 0, 1)
				y := p.AddVariable("y", 0, 1)
				p.AddConstraint("sum", expr(term(x, 1), term(y, 1)), optimisation.Equal, 1)
				p.AddObjectiveTerm(1, optimisation.LinearExpr{Constant: 4}, false)
			},
			expectedStatus:    optimisation.StatusOptimal,
			expectedObjective: 4,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p := &optimisation.Program{}
			tc.build(p)
			solution, err := MustNew(DefaultTolerance).Solve(fairdivcontext.Background(), p)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, solution.Status)
			if tc.expectedStatus != optimisation.StatusOptimal {
				assert.Nil(t, solution.Values)
				return
			}
			assert.LessOrEqual(t, p.MaxViolation(solution.Values), 1e-9)
			if tc.expectedValues != nil {
				assert.InDeltaSlice(t, tc.expectedValues, solution.Values, 1e-9)
			}
			assert.InDelta(t, tc.expectedObjective, solution.Objective, 1e-9)
		})
	}
}

func TestSolve_LogarithmicObjectiveNotSupported(t *testing.T) {
	p := &optimisation.Program{}
	x := p.AddVariable("x", 0, 1)
	p.AddObjectiveTerm(1, expr(term(x, 1)), true)
	_, err := MustNew(DefaultTolerance).Solve(fairdivcontext.Background(), p)
	assert.True(t, fairdiverrors.IsNotSupported(err))
}

func TestSolve_InvalidProgram(t *testing.T) {
	_, err := MustNew(DefaultTolerance).Solve(fairdivcontext.Background(), &optimisation.Program{})
	assert.True(t, fairdiverrors.IsInvalidArgument(err))
}

func TestSolve_CancelledContext(t *testing.T) {
	ctx, cancel := fairdivcontext.WithCancel(fairdivcontext.Background())
	cancel()
	p := &optimisation.Program{}
	x := p.AddVariable("x", 0, 1)
	p.AddObjectiveTerm(1, expr(term(x, 1)), false)
	_, err := MustNew(DefaultTolerance).Solve(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}
