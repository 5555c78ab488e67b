package barrier

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/armadaproject/fairdiv/internal/common/fairdivcontext"
)

// centring is the barrier subproblem for a fixed weight mu, parameterised by y where x = xc + N y.
type centring struct {
	ctx *fairdivcontext.Context
	f   *formulation
	xc  []float64
	mu  float64
}

func (f *formulation) centring(ctx *fairdivcontext.Context, xc []float64, mu float64) *centring {
	return &centring{ctx: ctx, f: f, xc: xc, mu: mu}
}

func (c *centring) point(y []float64) []float64 {
	x := mat.NewVecDense(c.f.n, nil)
	x.MulVec(c.f.null, mat.NewVecDense(len(y), y))
	x.AddVec(x, mat.NewVecDense(c.f.n, c.xc))
	return x.RawVector().Data
}

func (c *centring) problem() optimize.Problem {
	return optimize.Problem{
		Func:   c.value,
		Grad:   c.gradient,
		Hess:   c.hessian,
		Status: c.status,
	}
}

// value returns +Inf outside the domain of the barrier, which makes the line search backtrack.
func (c *centring) value(y []float64) float64 {
	x := c.point(y)
	rv := -mat.Dot(c.f.linear, mat.NewVecDense(len(y), y))
	for _, l := range c.f.logs {
		v := l.expr.Eval(x)
		if v <= 0 {
			return math.Inf(1)
		}
		rv -= l.weight * math.Log(v)
	}
	for _, b := range c.f.barriers {
		v := b.expr.Eval(x)
		if v <= 0 {
			return math.Inf(1)
		}
		rv -= c.mu * math.Log(v)
	}
	return rv
}

func (c *centring) gradient(grad, y []float64) {
	x := c.point(y)
	g := mat.NewVecDense(len(grad), grad)
	g.ScaleVec(-1, c.f.linear)
	for _, l := range c.f.logs {
		g.AddScaledVec(g, -l.weight/l.expr.Eval(x), l.projected)
	}
	for _, b := range c.f.barriers {
		g.AddScaledVec(g, -c.mu/b.expr.Eval(x), b.projected)
	}
}

func (c *centring) hessian(hess *mat.SymDense, y []float64) {
	x := c.point(y)
	hess.Zero()
	for _, l := range c.f.logs {
		v := l.expr.Eval(x)
		hess.SymRankOne(hess, l.weight/(v*v), l.projected)
	}
	for _, b := range c.f.barriers {
		v := b.expr.Eval(x)
		hess.SymRankOne(hess, c.mu/(v*v), b.projected)
	}
}

func (c *centring) status() (optimize.Status, error) {
	if err := c.ctx.Err(); err != nil {
		return optimize.Failure, err
	}
	return optimize.NotTerminated, nil
}
