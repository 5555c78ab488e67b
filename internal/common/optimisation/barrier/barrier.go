// Package barrier solves convex programs with logarithmic objectives using a primal log-barrier method.
//
// Equality constraints are eliminated by moving within the null space of the equality rows.
// Bounds and inequality rows are replaced by a logarithmic barrier whose weight mu is decreased geometrically.
// Each barrier subproblem is minimised with gonum's Newton method.
// At the end, the duality gap of the barrier solution is at most mu times the number of barrier terms.
package barrier

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/common/linalg"
	"github.com/armadaproject/fairdiv/internal/common/optimisation"
)

type Config struct {
	// Barrier weight of the first subproblem, relative to the sum of absolute objective weights.
	InitialWeight float64 `validate:"gt=0"`
	// Factor by which the barrier weight is divided between subproblems.
	Decay float64 `validate:"gt=1"`
	// Relative duality gap at which to stop.
	Tolerance float64 `validate:"gt=0"`
	// Maximum number of Newton iterations per subproblem.
	MaxNewtonIterations int `validate:"gt=0"`
	// Newton iterations stop once the infinity norm of the gradient,
	// relative to the sum of absolute objective weights, falls below this threshold.
	GradientTolerance float64 `validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		InitialWeight:       1,
		Decay:               10,
		Tolerance:           1e-10,
		MaxNewtonIterations: 200,
		GradientTolerance:   1e-9,
	}
}

// Maximum violation of an equality row accepted at the start point before it is projected onto the rows.
const equalityTol = 1e-9

type Oracle struct {
	config Config
}

func New(config Config) (*Oracle, error) {
	check := func(name string, value float64, lower float64, message string) error {
		if !(value > lower) || math.IsInf(value, 1) {
			return errors.WithStack(&fairdiverrors.ErrInvalidArgument{Name: name, Value: value, Message: message})
		}
		return nil
	}
	if err := check("initialWeight", config.InitialWeight, 0, "outside allowed range (0, Inf)"); err != nil {
		return nil, err
	}
	if err := check("decay", config.Decay, 1, "outside allowed range (1, Inf)"); err != nil {
		return nil, err
	}
	if err := check("tolerance", config.Tolerance, 0, "outside allowed range (0, Inf)"); err != nil {
		return nil, err
	}
	if err := check("gradientTolerance", config.GradientTolerance, 0, "outside allowed range (0, Inf)"); err != nil {
		return nil, err
	}
	if config.MaxNewtonIterations <= 0 {
		return nil, errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "maxNewtonIterations",
			Value:   config.MaxNewtonIterations,
			Message: "must be positive",
		})
	}
	return &Oracle{config: config}, nil
}

func MustNew(config Config) *Oracle {
	oracle, err := New(config)
	if err != nil {
		panic(err)
	}
	return oracle
}

func (o *Oracle) Solve(ctx *fairdivcontext.Context, p *optimisation.Program) (*optimisation.Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	f, err := newFormulation(p)
	if err != nil {
		return nil, err
	}
	x0, err := f.start(p)
	if err != nil {
		return nil, err
	}
	if !f.strictlyFeasible(x0) {
		ctx.Log.Debug("start point is not strictly feasible")
		return &optimisation.Solution{Status: optimisation.StatusInfeasible}, nil
	}
	if f.null == nil {
		// The equality rows determine the solution.
		return &optimisation.Solution{Status: optimisation.StatusOptimal, Values: x0, Objective: p.Objective.Eval(x0)}, nil
	}

	x := x0
	iterations := 0
	mu := o.config.InitialWeight * f.scale
	for {
		c := f.centring(ctx, x, mu)
		result, err := optimize.Minimize(
			c.problem(),
			make([]float64, f.dim),
			&optimize.Settings{
				GradientThreshold: o.config.GradientTolerance * f.scale,
				MajorIterations:   o.config.MaxNewtonIterations,
				Converger: &optimize.FunctionConverge{
					Absolute:   1e-14 * f.scale,
					Relative:   1e-14,
					Iterations: 20,
				},
			},
			&optimize.Newton{
				Linesearcher:      &optimize.Backtracking{},
				GradStopThreshold: o.config.GradientTolerance * f.scale,
			},
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.WithStack(ctxErr)
		}
		if err != nil && !acceptable(err) {
			ctx.Log.Debugf("barrier subproblem with weight %g failed: %s", mu, err)
			return &optimisation.Solution{Status: optimisation.StatusNotConverged, Iterations: iterations}, nil
		}
		if result != nil && result.Status == optimize.FunctionNegativeInfinity {
			return &optimisation.Solution{Status: optimisation.StatusUnbounded, Iterations: iterations}, nil
		}
		if result == nil || math.IsInf(result.F, 0) || math.IsNaN(result.F) {
			return &optimisation.Solution{Status: optimisation.StatusNotConverged, Iterations: iterations}, nil
		}
		iterations += result.MajorIterations
		x = c.point(result.X)
		if mu*float64(f.barrierTerms()) <= o.config.Tolerance*f.scale {
			break
		}
		mu /= o.config.Decay
	}
	ctx.Log.Debugf("barrier method finished after %d Newton iterations with weight %g", iterations, mu)
	return &optimisation.Solution{
		Status:     optimisation.StatusOptimal,
		Values:     x,
		Objective:  p.Objective.Eval(x),
		Iterations: iterations,
	}, nil
}

// acceptable returns true for errors indicating Newton's method could make no further progress,
// which happens once the subproblem is solved to machine precision.
func acceptable(err error) bool {
	return errors.Is(err, optimize.ErrLinesearcherFailure) ||
		errors.Is(err, optimize.ErrNoProgress) ||
		errors.Is(err, optimize.ErrNonDescentDirection)
}

// affine is a.x + c, with a given both in the original coordinates and projected onto the null space.
type affine struct {
	expr      optimisation.LinearExpr
	projected *mat.VecDense
}

type logTerm struct {
	weight float64
	affine
}

// formulation is a program rewritten as
//
//	minimise -linear.x - sum_k w_k log(u_k.x) - mu sum_j log(g_j.x)
//
// over x = x_c + N y, where the columns of N span the null space of the equality rows.
type formulation struct {
	n int
	// Dimension of the null space.
	dim  int
	null *mat.Dense
	// Gradient of the linear part of the objective, projected onto the null space.
	linear   *mat.VecDense
	logs     []logTerm
	barriers []affine
	// Equality rows.
	eq    *mat.Dense
	eqRhs []float64
	// Sum of absolute objective weights; used to make tolerances relative.
	scale float64
}

func newFormulation(p *optimisation.Program) (*formulation, error) {
	n := len(p.Variables)
	f := &formulation{n: n}

	var eqRows []optimisation.LinearExpr
	var barriers []optimisation.LinearExpr
	for i, v := range p.Variables {
		if v.Lower == v.Upper {
			eqRows = append(eqRows, optimisation.LinearExpr{Terms: []optimisation.Term{{Var: i, Coeff: 1}}, Constant: -v.Lower})
		}
	}
	implied := optimisation.ImpliedUpperBounds(p)
	for i, v := range p.Variables {
		if v.Lower == v.Upper {
			continue
		}
		if !math.IsInf(v.Lower, -1) {
			barriers = append(barriers, optimisation.LinearExpr{Terms: []optimisation.Term{{Var: i, Coeff: 1}}, Constant: -v.Lower})
		}
		if !implied[i] {
			barriers = append(barriers, optimisation.LinearExpr{Terms: []optimisation.Term{{Var: i, Coeff: -1}}, Constant: v.Upper})
		}
	}
	for _, c := range p.Constraints {
		e := c.Expr.Normalised()
		switch c.Relation {
		case optimisation.Equal:
			e.Constant -= c.Rhs
			eqRows = append(eqRows, e)
		case optimisation.GreaterOrEqual:
			e.Constant -= c.Rhs
			barriers = append(barriers, e)
		case optimisation.LessOrEqual:
			barriers = append(barriers, negate(e, c.Rhs))
		}
	}

	// Rows without terms are either trivially satisfied or make the program infeasible;
	// the start point check reports the latter.
	var eqNonEmpty []optimisation.LinearExpr
	for _, e := range eqRows {
		if len(e.Terms) > 0 {
			eqNonEmpty = append(eqNonEmpty, e)
		} else if e.Constant != 0 {
			barriers = append(barriers, optimisation.LinearExpr{Constant: -math.Abs(e.Constant)})
		}
	}
	if len(eqNonEmpty) > 0 {
		f.eq = mat.NewDense(len(eqNonEmpty), n, nil)
		f.eqRhs = make([]float64, len(eqNonEmpty))
		for r, e := range eqNonEmpty {
			for _, t := range e.Terms {
				f.eq.Set(r, t.Var, t.Coeff)
			}
			f.eqRhs[r] = -e.Constant
		}
		null, err := linalg.NullSpace(f.eq, linalg.DefaultRcond)
		if err != nil {
			return nil, err
		}
		f.null = null
	} else {
		f.null = identity(n)
	}
	if f.null != nil {
		_, f.dim = f.null.Dims()
	}

	project := func(e optimisation.LinearExpr) *mat.VecDense {
		if f.null == nil {
			return nil
		}
		a := make([]float64, n)
		e.Gradient(a, 1)
		rv := mat.NewVecDense(f.dim, nil)
		rv.MulVec(f.null.T(), mat.NewVecDense(n, a))
		return rv
	}

	linear := optimisation.LinearExpr{}
	for _, t := range p.Objective.Terms {
		f.scale += math.Abs(t.Weight)
		if t.Weight == 0 {
			continue
		}
		e := t.Expr.Normalised()
		switch {
		case !t.Log:
			for _, term := range e.Terms {
				linear.Add(term.Var, t.Weight*term.Coeff)
			}
		case len(e.Terms) == 0:
			// Constant arguments do not affect the optimum.
			continue
		default:
			f.logs = append(f.logs, logTerm{weight: t.Weight, affine: affine{expr: e, projected: project(e)}})
		}
	}
	if f.scale == 0 {
		f.scale = 1
	}
	f.linear = project(linear)
	for _, e := range barriers {
		f.barriers = append(f.barriers, affine{expr: e, projected: project(e)})
	}
	return f, nil
}

// start returns the start point of the program, projected onto the equality rows if necessary.
func (f *formulation) start(p *optimisation.Program) ([]float64, error) {
	x := make([]float64, f.n)
	if p.Start != nil {
		copy(x, p.Start)
	}
	if f.eq == nil {
		return x, nil
	}
	m, _ := f.eq.Dims()
	residual := make([]float64, m)
	for r := 0; r < m; r++ {
		residual[r] = f.eqRhs[r] - mat.Dot(f.eq.RowView(r), mat.NewVecDense(f.n, x))
	}
	if floats.Norm(residual, math.Inf(1)) <= equalityTol {
		return x, nil
	}
	correction, err := linalg.PseudoSolve(f.eq, residual, linalg.DefaultRcond)
	if err != nil {
		return nil, err
	}
	floats.Add(x, correction)
	return x, nil
}

func (f *formulation) strictlyFeasible(x []float64) bool {
	for _, b := range f.barriers {
		if !(b.expr.Eval(x) > 0) {
			return false
		}
	}
	for _, l := range f.logs {
		if !(l.expr.Eval(x) > 0) {
			return false
		}
	}
	if f.eq != nil {
		m, _ := f.eq.Dims()
		for r := 0; r < m; r++ {
			if math.Abs(f.eqRhs[r]-mat.Dot(f.eq.RowView(r), mat.NewVecDense(f.n, x))) > equalityTol*(1+math.Abs(f.eqRhs[r])) {
				return false
			}
		}
	}
	return true
}

func (f *formulation) barrierTerms() int {
	return len(f.barriers)
}

func negate(e optimisation.LinearExpr, rhs float64) optimisation.LinearExpr {
	rv := optimisation.LinearExpr{Terms: make([]optimisation.Term, len(e.Terms)), Constant: rhs - e.Constant}
	for i, t := range e.Terms {
		rv.Terms[i] = optimisation.Term{Var: t.Var, Coeff: -t.Coeff}
	}
	return rv
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}
