// Package optimisation describes convex programs over real-valued variables and the oracles that solve them.
//
// A Program has box-bounded variables, linear constraints, and an objective that is always maximised.
// The objective is a weighted sum of terms, each of which is either a linear expression or the logarithm of one.
// Oracles live in subpackages; see simplex for linear objectives and barrier for logarithmic ones.
package optimisation

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
)

// Variable is a decision variable with bounds Lower <= x <= Upper.
// Either bound may be infinite.
type Variable struct {
	Name  string
	Lower float64
	Upper float64
}

// Term is the product of a coefficient and a variable.
type Term struct {
	Var   int
	Coeff float64
}

// LinearExpr is Constant + sum_k Terms[k].Coeff * x[Terms[k].Var].
type LinearExpr struct {
	Terms    []Term
	Constant float64
}

// Add appends coeff * x[v] to the expression.
func (e *LinearExpr) Add(v int, coeff float64) {
	e.Terms = append(e.Terms, Term{Var: v, Coeff: coeff})
}

// Eval returns the value of the expression at x.
func (e LinearExpr) Eval(x []float64) float64 {
	rv := e.Constant
	for _, t := range e.Terms {
		rv += t.Coeff * x[t.Var]
	}
	return rv
}

// Gradient adds scale times the gradient of the expression to grad.
func (e LinearExpr) Gradient(grad []float64, scale float64) {
	for _, t := range e.Terms {
		grad[t.Var] += scale * t.Coeff
	}
}

// Normalised returns an equivalent expression in which each variable appears at most once,
// terms with zero coefficients are removed, and terms are sorted by variable.
func (e LinearExpr) Normalised() LinearExpr {
	coeffs := make(map[int]float64, len(e.Terms))
	for _, t := range e.Terms {
		coeffs[t.Var] += t.Coeff
	}
	vars := maps.Keys(coeffs)
	slices.Sort(vars)
	rv := LinearExpr{Terms: make([]Term, 0, len(vars)), Constant: e.Constant}
	for _, v := range vars {
		if c := coeffs[v]; c != 0 {
			rv.Terms = append(rv.Terms, Term{Var: v, Coeff: c})
		}
	}
	return rv
}

type Relation int

const (
	LessOrEqual Relation = iota
	GreaterOrEqual
	Equal
)

func (r Relation) String() string {
	switch r {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "=="
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// Constraint is Expr Relation Rhs.
type Constraint struct {
	Name     string
	Expr     LinearExpr
	Relation Relation
	Rhs      float64
}

// Violation returns by how much x violates the constraint, or 0 if it is satisfied.
func (c Constraint) Violation(x []float64) float64 {
	lhs := c.Expr.Eval(x)
	switch c.Relation {
	case LessOrEqual:
		return math.Max(0, lhs-c.Rhs)
	case GreaterOrEqual:
		return math.Max(0, c.Rhs-lhs)
	default:
		return math.Abs(lhs - c.Rhs)
	}
}

// ObjectiveTerm is Weight * Expr, or Weight * log(Expr) if Log is set.
type ObjectiveTerm struct {
	Weight float64
	Expr   LinearExpr
	Log    bool
}

// Objective is the sum of its terms, to be maximised.
type Objective struct {
	Terms []ObjectiveTerm
}

// ObjectiveKind categorises objectives by the oracle able to solve them.
type ObjectiveKind string

const (
	LinearObjective      ObjectiveKind = "linear"
	LogarithmicObjective ObjectiveKind = "logarithmic"
)

// Kind returns LogarithmicObjective if any term with non-zero weight is a logarithm and LinearObjective otherwise.
func (o Objective) Kind() ObjectiveKind {
	for _, t := range o.Terms {
		if t.Log && t.Weight != 0 {
			return LogarithmicObjective
		}
	}
	return LinearObjective
}

// IsLinear returns true if the objective has no logarithmic terms with non-zero weight.
func (o Objective) IsLinear() bool {
	return o.Kind() == LinearObjective
}

// Eval returns the value of the objective at x.
// Logarithmic terms with non-zero weight evaluate to -Inf where their argument is not positive.
func (o Objective) Eval(x []float64) float64 {
	rv := 0.0
	for _, t := range o.Terms {
		if t.Weight == 0 {
			continue
		}
		v := t.Expr.Eval(x)
		if t.Log {
			if v <= 0 {
				return math.Inf(-1)
			}
			v = math.Log(v)
		}
		rv += t.Weight * v
	}
	return rv
}

// Program is a convex program: maximise Objective subject to Constraints and variable bounds.
type Program struct {
	Variables   []Variable
	Constraints []Constraint
	Objective   Objective
	// Start is an optional point at which the program is feasible, preferably strictly so.
	// Interior-point oracles start from it.
	Start []float64
}

// AddVariable adds a variable with the given bounds and returns its index.
func (p *Program) AddVariable(name string, lower, upper float64) int {
	p.Variables = append(p.Variables, Variable{Name: name, Lower: lower, Upper: upper})
	return len(p.Variables) - 1
}

// AddConstraint adds a constraint to the program.
func (p *Program) AddConstraint(name string, expr LinearExpr, relation Relation, rhs float64) {
	p.Constraints = append(p.Constraints, Constraint{Name: name, Expr: expr, Relation: relation, Rhs: rhs})
}

// AddObjectiveTerm adds weight * expr, or weight * log(expr), to the objective.
func (p *Program) AddObjectiveTerm(weight float64, expr LinearExpr, log bool) {
	p.Objective.Terms = append(p.Objective.Terms, ObjectiveTerm{Weight: weight, Expr: expr, Log: log})
}

// Validate returns an error if the program is malformed.
func (p *Program) Validate() error {
	if len(p.Variables) == 0 {
		return errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "variables",
			Value:   0,
			Message: "program has no variables",
		})
	}
	for i, v := range p.Variables {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || v.Lower > v.Upper || math.IsInf(v.Lower, 1) || math.IsInf(v.Upper, -1) {
			return errors.WithStack(&fairdiverrors.ErrInvalidArgument{
				Name:    fmt.Sprintf("variables[%d]", i),
				Value:   fmt.Sprintf("[%v, %v]", v.Lower, v.Upper),
				Message: "bounds must satisfy -Inf <= lower <= upper <= Inf",
			})
		}
	}
	checkExpr := func(name string, e LinearExpr) error {
		if !isFinite(e.Constant) {
			return errors.WithStack(&fairdiverrors.ErrInvalidArgument{Name: name, Value: e.Constant, Message: "constant must be finite"})
		}
		for _, t := range e.Terms {
			if t.Var < 0 || t.Var >= len(p.Variables) {
				return errors.WithStack(&fairdiverrors.ErrInvalidArgument{
					Name:    name,
					Value:   t.Var,
					Message: fmt.Sprintf("variable index outside [0, %d)", len(p.Variables)),
				})
			}
			if !isFinite(t.Coeff) {
				return errors.WithStack(&fairdiverrors.ErrInvalidArgument{Name: name, Value: t.Coeff, Message: "coefficient must be finite"})
			}
		}
		return nil
	}
	for i, c := range p.Constraints {
		name := fmt.Sprintf("constraints[%d]", i)
		if err := checkExpr(name, c.Expr); err != nil {
			return err
		}
		if !isFinite(c.Rhs) {
			return errors.WithStack(&fairdiverrors.ErrInvalidArgument{Name: name, Value: c.Rhs, Message: "right-hand side must be finite"})
		}
		if c.Relation < LessOrEqual || c.Relation > Equal {
			return errors.WithStack(&fairdiverrors.ErrInvalidArgument{Name: name, Value: c.Relation, Message: "unknown relation"})
		}
	}
	for i, t := range p.Objective.Terms {
		name := fmt.Sprintf("objective[%d]", i)
		if err := checkExpr(name, t.Expr); err != nil {
			return err
		}
		if !isFinite(t.Weight) {
			return errors.WithStack(&fairdiverrors.ErrInvalidArgument{Name: name, Value: t.Weight, Message: "weight must be finite"})
		}
		if t.Log && t.Weight < 0 {
			return errors.WithStack(&fairdiverrors.ErrInvalidArgument{
				Name:    name,
				Value:   t.Weight,
				Message: "logarithmic terms must have non-negative weight for the program to be convex",
			})
		}
	}
	if p.Start != nil && len(p.Start) != len(p.Variables) {
		return errors.WithStack(&fairdiverrors.ErrInvalidArgument{
			Name:    "start",
			Value:   len(p.Start),
			Message: fmt.Sprintf("expected %d values", len(p.Variables)),
		})
	}
	return nil
}

// MaxViolation returns the largest amount by which x violates a bound or constraint of the program.
func (p *Program) MaxViolation(x []float64) float64 {
	rv := 0.0
	for i, v := range p.Variables {
		rv = math.Max(rv, v.Lower-x[i])
		rv = math.Max(rv, x[i]-v.Upper)
	}
	for _, c := range p.Constraints {
		rv = math.Max(rv, c.Violation(x))
	}
	return rv
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
